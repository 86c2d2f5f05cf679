package proof

import (
	"fmt"

	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// hashCommitment computes Hash(auditField, constraintField, subjectField),
// the payload of the poseidon_hash scheme.
func hashCommitment(auditCommitment, constraintCommitment, covenantID string) (string, error) {
	auditField, err := field.HashToField(auditCommitment)
	if err != nil {
		return "", fmt.Errorf("audit commitment: %w", err)
	}
	constraintField, err := field.HashToField(constraintCommitment)
	if err != nil {
		return "", fmt.Errorf("constraint commitment: %w", err)
	}
	subjectField, err := field.HashToField(covenantID)
	if err != nil {
		return "", fmt.Errorf("covenant id: %w", err)
	}
	return poseidon.HashHex(auditField, constraintField, subjectField)
}

// verifyHashCommitment recomputes the payload from the public inputs.
func verifyHashCommitment(p *ComplianceProof) []string {
	want, err := hashCommitment(p.PublicInputs[1], p.PublicInputs[2], p.PublicInputs[0])
	if err != nil {
		return []string{fmt.Sprintf("Cannot recompute proof value: %v", err)}
	}
	if want != p.Proof {
		return []string{"Proof value mismatch"}
	}
	return nil
}
