package proof_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nobulex/compliance-zkproof/pkg/crypto"
	"github.com/nobulex/compliance-zkproof/pkg/proof"
)

func batchInputs(sizes ...int) []proof.Input {
	inputs := make([]proof.Input, len(sizes))
	for i, n := range sizes {
		entries := make([]crypto.AuditEntry, n)
		for j := range entries {
			entries[j] = crypto.AuditEntry{Hash: crypto.SHA256String(string(rune('a'+i)) + "-entry-" + string(rune('0'+j)))}
		}
		inputs[i] = proof.Input{
			CovenantID:   testCovenantID,
			Constraints:  testConstraints,
			AuditEntries: entries,
			Now:          fixedClock,
		}
	}
	return inputs
}

func TestBatchOrderMatters(t *testing.T) {
	b, err := proof.GenerateBatch(context.Background(), batchInputs(2, 3))
	require.NoError(t, err)
	require.Len(t, b.Proofs, 2)
	require.Equal(t, 5, b.EntryCount)
	require.Equal(t, 2, b.Proofs[0].EntryCount)
	require.Equal(t, 3, b.Proofs[1].EntryCount)

	res := proof.VerifyBatch(b)
	require.True(t, res.Valid, res.Errors)

	swapped := *b
	swapped.Proofs = []*proof.ComplianceProof{b.Proofs[1], b.Proofs[0]}
	res = proof.VerifyBatch(&swapped)
	require.False(t, res.Valid)
	require.Contains(t, res.Errors, "Batch commitment mismatch")
	require.Contains(t, res.Errors, "Batch proof mismatch")
}

func TestBatchDeterministic(t *testing.T) {
	a, err := proof.GenerateBatch(context.Background(), batchInputs(1, 4, 0, 2))
	require.NoError(t, err)
	b, err := proof.GenerateBatch(context.Background(), batchInputs(1, 4, 0, 2))
	require.NoError(t, err)
	require.Equal(t, a.BatchCommitment, b.BatchCommitment)
	require.Equal(t, a.BatchProof, b.BatchProof)
	require.Equal(t, 7, a.EntryCount)
	for i := range a.Proofs {
		require.Equal(t, a.Proofs[i], b.Proofs[i])
	}
}

func TestBatchTamper(t *testing.T) {
	b, err := proof.GenerateBatch(context.Background(), batchInputs(2, 3))
	require.NoError(t, err)

	t.Run("entry count", func(t *testing.T) {
		c := *b
		c.EntryCount = 6
		requireErrorContaining(t, proof.VerifyBatch(&c), "Batch entry count mismatch")
	})
	t.Run("batch proof", func(t *testing.T) {
		c := *b
		c.BatchProof = flipHex(c.BatchProof)
		res := proof.VerifyBatch(&c)
		require.Equal(t, []string{"Batch proof mismatch"}, res.Errors)
	})
	t.Run("member proof", func(t *testing.T) {
		c := *b
		member := clone(b.Proofs[1])
		member.Proof = flipHex(member.Proof)
		c.Proofs = []*proof.ComplianceProof{b.Proofs[0], member}
		res := proof.VerifyBatch(&c)
		require.Equal(t, []string{"proof[1]: Proof value mismatch"}, res.Errors)
	})
}

func TestBatchErrors(t *testing.T) {
	_, err := proof.GenerateBatch(context.Background(), nil)
	require.ErrorIs(t, err, proof.ErrEmptyBatch)

	inputs := batchInputs(1, 1)
	inputs[1].CovenantID = ""
	_, err = proof.GenerateBatch(context.Background(), inputs)
	require.ErrorIs(t, err, proof.ErrInvalidInput)
	require.Contains(t, err.Error(), "batch[1]")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = proof.GenerateBatch(ctx, batchInputs(1, 1))
	require.ErrorIs(t, err, context.Canceled)

	require.False(t, proof.VerifyBatch(nil).Valid)
	require.False(t, proof.VerifyBatch(&proof.BatchProofResult{}).Valid)
}
