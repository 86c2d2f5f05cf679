package proof

import (
	"context"
	"fmt"
	"math/big"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// BatchProofResult aggregates several proofs into one chained commitment.
// It can always be recomputed from Proofs.
type BatchProofResult struct {
	Proofs          []*ComplianceProof `json:"proofs"`
	BatchCommitment string             `json:"batchCommitment"`
	BatchProof      string             `json:"batchProof"`
	EntryCount      int                `json:"entryCount"`
}

// GenerateBatch generates one proof per input and folds their audit
// commitments in input order. Proofs are generated concurrently; the fold
// is not commutative, so it runs afterwards over the ordered results.
func GenerateBatch(ctx context.Context, inputs []Input) (*BatchProofResult, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}

	proofs := make([]*ComplianceProof, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := Generate(inputs[i])
			if err != nil {
				return fmt.Errorf("batch[%d]: %w", i, err)
			}
			proofs[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	commitment, batchProof, total, err := batchDigest(proofs)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("proofs", len(proofs)).
		Int("entry_count", total).
		Str("batch_commitment", commitment).
		Msg("generated proof batch")

	return &BatchProofResult{
		Proofs:          proofs,
		BatchCommitment: commitment,
		BatchProof:      batchProof,
		EntryCount:      total,
	}, nil
}

// batchDigest folds acc = Hash(acc, auditCommitment_i) from 0 and binds the
// total entry count: batchProof = Hash(batchCommitment, total).
func batchDigest(proofs []*ComplianceProof) (commitment, batchProof string, total int, err error) {
	fields := make([]*big.Int, len(proofs))
	for i, p := range proofs {
		if p == nil {
			return "", "", 0, fmt.Errorf("batch[%d]: proof is missing", i)
		}
		f, err := field.HashToField(p.AuditLogCommitment)
		if err != nil {
			return "", "", 0, fmt.Errorf("batch[%d]: audit commitment: %w", i, err)
		}
		fields[i] = f
		total += p.EntryCount
	}
	if total < 0 {
		return "", "", 0, fmt.Errorf("batch entry count %d is negative", total)
	}

	acc, err := poseidon.Fold(big.NewInt(0), fields...)
	if err != nil {
		return "", "", 0, err
	}
	bp, err := poseidon.Hash(acc, big.NewInt(int64(total)))
	if err != nil {
		return "", "", 0, err
	}
	return field.MustHex(acc), field.MustHex(bp), total, nil
}

// VerifyBatch re-verifies every proof, then recomputes the batch
// commitment, batch proof and entry count from the stored proofs.
func VerifyBatch(b *BatchProofResult) VerificationResult {
	if b == nil {
		return newResult([]string{"Batch is missing"})
	}
	if len(b.Proofs) == 0 {
		return newResult([]string{"Batch contains no proofs"})
	}

	var errs []string
	for i, p := range b.Proofs {
		res := Verify(p)
		for _, e := range res.Errors {
			errs = append(errs, fmt.Sprintf("proof[%d]: %s", i, e))
		}
	}

	commitment, batchProof, total, err := batchDigest(b.Proofs)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Cannot recompute batch: %v", err))
		return newResult(errs)
	}
	if commitment != b.BatchCommitment {
		errs = append(errs, "Batch commitment mismatch")
	}
	if batchProof != b.BatchProof {
		errs = append(errs, "Batch proof mismatch")
	}
	if total != b.EntryCount {
		errs = append(errs, fmt.Sprintf("Batch entry count mismatch: stored %d, recomputed %d", b.EntryCount, total))
	}

	logger.Debug().
		Int("proofs", len(b.Proofs)).
		Int("errors", len(errs)).
		Msg("verified proof batch")

	return newResult(errs)
}
