package proof

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes the envelope in its wire form.
func Marshal(p *ComplianceProof) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("proof: marshal envelope: %w", err)
	}
	return b, nil
}

// Unmarshal decodes an envelope. Type mismatches, such as publicInputs not
// being a list of strings, fail with ErrMalformedEnvelope.
func Unmarshal(data []byte) (*ComplianceProof, error) {
	var p ComplianceProof
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return &p, nil
}

// VerifyJSON decodes and verifies an envelope. A structurally malformed
// envelope yields a single error and no further checks.
func VerifyJSON(data []byte) VerificationResult {
	p, err := Unmarshal(data)
	if err != nil {
		return newResult([]string{fmt.Sprintf("Malformed proof envelope: %v", err)})
	}
	return Verify(p)
}
