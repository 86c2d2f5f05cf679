package audit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nobulex/compliance-zkproof/pkg/crypto"
	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/proof"
)

var (
	ErrNotHashCommitment = errors.New("audit: only poseidon_hash proofs can be proven in-circuit")
	ErrTooManyEntries    = errors.New("audit: too many audit entries for the circuit")
	ErrEntriesMismatch   = errors.New("audit: audit entries do not match the proof")
)

// WitnessResult holds the circuit assignment and the public values in the
// order the verifier expects them.
type WitnessResult struct {
	Assignment   AuditCircuit
	PublicInputs [5]*big.Int // proofValue, auditCommitment, constraintCommitment, subjectId, entryCount
}

// PrepareWitness builds an assignment for a poseidon_hash proof and the
// audit log it was generated from. The log must reproduce the proof's audit
// commitment.
func PrepareWitness(p *proof.ComplianceProof, entries []crypto.AuditEntry) (*WitnessResult, error) {
	if p == nil {
		return nil, errors.New("audit: proof is required")
	}
	if p.ProofSystem != proof.PoseidonHash {
		return nil, fmt.Errorf("%w: got %q", ErrNotHashCommitment, p.ProofSystem)
	}
	if len(entries) > MaxEntries {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyEntries, len(entries), MaxEntries)
	}
	if len(entries) != p.EntryCount {
		return nil, fmt.Errorf("%w: %d entries, proof has %d", ErrEntriesMismatch, len(entries), p.EntryCount)
	}

	auditCommitment, err := crypto.AuditCommitment(entries)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	if auditCommitment != p.AuditLogCommitment {
		return nil, fmt.Errorf("%w: audit commitment differs", ErrEntriesMismatch)
	}
	entryFields, err := crypto.EntryFields(entries)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	proofValue, err := field.FromHex(p.Proof)
	if err != nil {
		return nil, fmt.Errorf("audit: proof value: %w", err)
	}
	auditField, err := field.HashToField(p.AuditLogCommitment)
	if err != nil {
		return nil, fmt.Errorf("audit: audit commitment: %w", err)
	}
	constraintField, err := field.HashToField(p.ConstraintCommitment)
	if err != nil {
		return nil, fmt.Errorf("audit: constraint commitment: %w", err)
	}
	subjectField, err := field.HashToField(p.CovenantID)
	if err != nil {
		return nil, fmt.Errorf("audit: covenant id: %w", err)
	}
	entryCount := big.NewInt(int64(p.EntryCount))

	var assignment AuditCircuit
	assignment.ProofValue = proofValue
	assignment.AuditCommitment = auditField
	assignment.ConstraintCommitment = constraintField
	assignment.SubjectID = subjectField
	assignment.EntryCount = entryCount
	for i := 0; i < MaxEntries; i++ {
		if i < len(entryFields) {
			assignment.Entries[i] = entryFields[i]
			assignment.Active[i] = 1
		} else {
			assignment.Entries[i] = 0
			assignment.Active[i] = 0
		}
	}

	return &WitnessResult{
		Assignment:   assignment,
		PublicInputs: [5]*big.Int{proofValue, auditField, constraintField, subjectField, entryCount},
	}, nil
}
