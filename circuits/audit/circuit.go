package audit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/nobulex/compliance-zkproof/pkg/crypto"
)

// emptyAuditCommitment is the audit commitment of an empty log, used as a
// circuit constant.
var emptyAuditCommitment *big.Int

func init() {
	c, err := crypto.AuditCommitmentField(nil)
	if err != nil {
		panic(err)
	}
	emptyAuditCommitment = c
}

// AuditCircuit proves that a poseidon_hash compliance proof was computed
// from an audit log the prover knows, without revealing the log. It checks:
//   - Active is a prefix mask of exactly EntryCount ones
//   - folding the active entries from 0 yields AuditCommitment, or the
//     empty-log constant when EntryCount is 0
//   - ProofValue == H(AuditCommitment, ConstraintCommitment, SubjectID)
//
// Logs longer than MaxEntries cannot be proven.
type AuditCircuit struct {
	// Public inputs (5)
	ProofValue           frontend.Variable `gnark:"proofValue,public"`
	AuditCommitment      frontend.Variable `gnark:"auditCommitment,public"`
	ConstraintCommitment frontend.Variable `gnark:"constraintCommitment,public"`
	SubjectID            frontend.Variable `gnark:"subjectId,public"`
	EntryCount           frontend.Variable `gnark:"entryCount,public"`

	// Private witness
	Entries [MaxEntries]frontend.Variable `gnark:"entries"`
	Active  [MaxEntries]frontend.Variable `gnark:"active"`
}

func (circuit *AuditCircuit) Define(api frontend.API) error {
	h := newHasher(api)

	// 1. Active mask: boolean, prefix-closed, and summing to EntryCount.
	count := frontend.Variable(0)
	for i := 0; i < MaxEntries; i++ {
		api.AssertIsBoolean(circuit.Active[i])
		if i > 0 {
			// active[i] = 1 requires active[i-1] = 1
			api.AssertIsEqual(api.Mul(circuit.Active[i], api.Sub(1, circuit.Active[i-1])), 0)
		}
		count = api.Add(count, circuit.Active[i])
	}
	api.AssertIsEqual(count, circuit.EntryCount)

	// 2. Chain the active entries: acc = H(acc, entry).
	acc := frontend.Variable(0)
	for i := 0; i < MaxEntries; i++ {
		next := h.hash(acc, circuit.Entries[i])
		acc = api.Select(circuit.Active[i], next, acc)
	}
	audit := api.Select(api.IsZero(circuit.EntryCount), emptyAuditCommitment, acc)
	api.AssertIsEqual(audit, circuit.AuditCommitment)

	// 3. Hash-commitment payload.
	pv := h.hash(circuit.AuditCommitment, circuit.ConstraintCommitment, circuit.SubjectID)
	api.AssertIsEqual(pv, circuit.ProofValue)

	return nil
}
