package proof

import (
	"fmt"
	"strconv"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/crypto"
	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/snark"
)

// Generate validates the input, computes both commitments and produces the
// scheme's payload. With a fixed clock the result is byte-for-byte
// deterministic.
func Generate(in Input) (*ComplianceProof, error) {
	system, err := validateInput(&in)
	if err != nil {
		return nil, err
	}

	auditCommitment, err := crypto.AuditCommitment(in.AuditEntries)
	if err != nil {
		return nil, fmt.Errorf("proof: audit commitment: %w", err)
	}
	constraintCommitment, err := crypto.ConstraintCommitment(in.Constraints)
	if err != nil {
		return nil, fmt.Errorf("proof: constraint commitment: %w", err)
	}

	entryCount := len(in.AuditEntries)
	publicInputs := []string{
		in.CovenantID,
		auditCommitment,
		constraintCommitment,
		strconv.Itoa(entryCount),
	}

	var payload string
	switch system {
	case Groth16:
		payload, err = proveSuccinct(in.AuditEntries, constraintCommitment, publicInputs)
	default:
		payload, err = hashCommitment(auditCommitment, constraintCommitment, in.CovenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("proof: %s: %w", system, err)
	}

	p := &ComplianceProof{
		Version:              config.ProofVersion,
		CovenantID:           in.CovenantID,
		AuditLogCommitment:   auditCommitment,
		ConstraintCommitment: constraintCommitment,
		Proof:                payload,
		PublicInputs:         publicInputs,
		ProofSystem:          system,
		GeneratedAt:          FormatTimestamp(in.now()),
		EntryCount:           entryCount,
	}

	logger.Debug().
		Str("covenant_id", p.CovenantID).
		Str("proof_system", string(system)).
		Int("entry_count", entryCount).
		Str("audit_commitment", auditCommitment).
		Msg("generated compliance proof")

	return p, nil
}

func proveSuccinct(entries []crypto.AuditEntry, constraintCommitment string, publicInputs []string) (string, error) {
	entryFields, err := crypto.EntryFields(entries)
	if err != nil {
		return "", err
	}
	constraintField, err := field.HashToField(constraintCommitment)
	if err != nil {
		return "", err
	}
	circuit, err := snark.BuildCircuit(entryFields)
	if err != nil {
		return "", err
	}
	witness, err := circuit.GenerateWitness(constraintField)
	if err != nil {
		return "", err
	}
	p, err := snark.Prove(witness, publicInputs)
	if err != nil {
		return "", err
	}
	return p.Marshal()
}
