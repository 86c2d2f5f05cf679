package proof

import (
	"fmt"
	"strconv"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/snark"
)

// Verify runs the five verification steps in order and collects every
// failure:
//
//  1. envelope shape and version
//  2. public input count
//  3. covenantId and auditLogCommitment agree with their public inputs
//  4. constraintCommitment and entryCount agree with their public inputs
//  5. scheme-specific recomputation
//
// A public input list of the wrong length blocks steps 3 to 5. Step 5 reads
// the public inputs, so a change to a mirrored field alone is reported by
// step 3 or 4.
func Verify(p *ComplianceProof) VerificationResult {
	if p == nil {
		return newResult([]string{"Proof envelope is missing"})
	}

	errs := checkEnvelope(p)

	if len(p.PublicInputs) != config.PublicInputCount {
		errs = append(errs, fmt.Sprintf("Expected %d public inputs, got %d", config.PublicInputCount, len(p.PublicInputs)))
		return finish(p, errs)
	}

	if p.PublicInputs[0] != p.CovenantID {
		errs = append(errs, "Public input covenantId mismatch")
	}
	if p.PublicInputs[1] != p.AuditLogCommitment {
		errs = append(errs, "Audit log commitment mismatch with public input")
	}

	if p.PublicInputs[2] != p.ConstraintCommitment {
		errs = append(errs, "Constraint commitment mismatch with public input")
	}
	if p.PublicInputs[3] != strconv.Itoa(p.EntryCount) {
		errs = append(errs, "Entry count mismatch with public input")
	}

	switch p.ProofSystem {
	case PoseidonHash:
		errs = append(errs, verifyHashCommitment(p)...)
	case Groth16:
		errs = append(errs, verifySuccinct(p)...)
	case Plonk:
		// Reserved: recognized, but there is no scheme to recompute.
	}

	return finish(p, errs)
}

func finish(p *ComplianceProof, errs []string) VerificationResult {
	res := newResult(errs)
	logger.Debug().
		Str("covenant_id", p.CovenantID).
		Str("proof_system", string(p.ProofSystem)).
		Bool("valid", res.Valid).
		Int("errors", len(res.Errors)).
		Msg("verified compliance proof")
	return res
}

func checkEnvelope(p *ComplianceProof) []string {
	var errs []string
	if p.Version != config.ProofVersion {
		errs = append(errs, fmt.Sprintf("Unsupported proof version %q", p.Version))
	}
	if !p.ProofSystem.Recognized() {
		errs = append(errs, fmt.Sprintf("Unknown proof system %q", p.ProofSystem))
	}
	if !field.IsHex(p.CovenantID) {
		errs = append(errs, "Covenant id must be a non-empty hex string")
	}
	if !field.IsCanonicalHex(p.AuditLogCommitment) {
		errs = append(errs, "Audit log commitment must be 64 lowercase hex characters")
	}
	if !field.IsCanonicalHex(p.ConstraintCommitment) {
		errs = append(errs, "Constraint commitment must be 64 lowercase hex characters")
	}
	if p.Proof == "" {
		errs = append(errs, "Proof payload is missing")
	} else if p.ProofSystem == PoseidonHash && !field.IsCanonicalHex(p.Proof) {
		errs = append(errs, "Proof value must be 64 lowercase hex characters")
	}
	if _, err := ParseTimestamp(p.GeneratedAt); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid generatedAt: %v", err))
	}
	if p.EntryCount < 0 {
		errs = append(errs, "Entry count must be non-negative")
	}
	return errs
}

func verifySuccinct(p *ComplianceProof) []string {
	payload, err := snark.ParseProof(p.Proof)
	if err != nil {
		return []string{fmt.Sprintf("Groth16 proof payload is malformed: %v", err)}
	}
	constraintField, err := field.HashToField(p.PublicInputs[2])
	if err != nil {
		return []string{fmt.Sprintf("Groth16 constraint commitment: %v", err)}
	}
	subjectField, err := field.HashToField(p.PublicInputs[0])
	if err != nil {
		return []string{fmt.Sprintf("Groth16 covenant id: %v", err)}
	}

	var errs []string
	for _, err := range snark.Verify(payload, p.PublicInputs, constraintField, subjectField) {
		errs = append(errs, fmt.Sprintf("Groth16 verification failed: %v", err))
	}
	return errs
}
