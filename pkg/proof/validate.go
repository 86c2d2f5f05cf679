package proof

import (
	"fmt"

	"github.com/nobulex/compliance-zkproof/pkg/field"
)

// validateInput fails fast, before any hashing, on the first malformed field.
func validateInput(in *Input) (ProofSystem, error) {
	if in.CovenantID == "" {
		return "", &ValidationError{Field: "covenantId", Reason: "is required"}
	}
	if !field.IsHex(in.CovenantID) {
		return "", &ValidationError{Field: "covenantId", Reason: "must be a hex string"}
	}
	if in.Constraints == "" {
		return "", &ValidationError{Field: "constraints", Reason: "must be a non-empty string"}
	}
	for i, e := range in.AuditEntries {
		if e.Hash == "" {
			return "", &ValidationError{Field: fmt.Sprintf("auditEntries[%d].hash", i), Reason: "is required"}
		}
		if !field.IsHex(e.Hash) {
			return "", &ValidationError{Field: fmt.Sprintf("auditEntries[%d].hash", i), Reason: "must be a hex string"}
		}
	}

	system := in.ProofSystem
	if system == "" {
		system = PoseidonHash
	}
	switch system {
	case PoseidonHash, Groth16:
		return system, nil
	case Plonk:
		return "", fmt.Errorf("%w: %s is reserved", ErrUnsupportedProofSystem, system)
	default:
		return "", &ValidationError{Field: "proofSystem", Reason: fmt.Sprintf("unknown proof system %q", system)}
	}
}
