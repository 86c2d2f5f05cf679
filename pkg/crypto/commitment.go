// Package crypto binds audit logs and constraint text to short commitments
// using the permutation hash.
package crypto

import (
	"fmt"
	"math/big"

	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// AuditEntry is the only part of an audit-log entry the commitments read.
// The hash is an opaque hex digest; entries are never reordered or
// deduplicated.
type AuditEntry struct {
	Hash string `json:"hash"`
}

// EntryField maps an entry's digest into the field.
func EntryField(e AuditEntry) (*big.Int, error) {
	v, err := field.HashToField(e.Hash)
	if err != nil {
		return nil, fmt.Errorf("audit entry hash: %w", err)
	}
	return v, nil
}

// EntryFields maps every entry into the field, preserving order.
func EntryFields(entries []AuditEntry) ([]*big.Int, error) {
	out := make([]*big.Int, len(entries))
	for i, e := range entries {
		v, err := EntryField(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// AuditCommitmentField computes the left-chained commitment
// acc = Hash(acc, entry) from acc = 0. An empty log commits to Hash(0).
func AuditCommitmentField(entries []AuditEntry) (*big.Int, error) {
	if len(entries) == 0 {
		return poseidon.Hash(big.NewInt(0))
	}
	fields, err := EntryFields(entries)
	if err != nil {
		return nil, err
	}
	return poseidon.Fold(big.NewInt(0), fields...)
}

// AuditCommitment returns the audit-log commitment as 64-char hex.
func AuditCommitment(entries []AuditEntry) (string, error) {
	v, err := AuditCommitmentField(entries)
	if err != nil {
		return "", err
	}
	return field.MustHex(v), nil
}

// ConstraintCommitmentField hashes the SHA-256 digest of the constraint text,
// reduced into the field.
func ConstraintCommitmentField(constraints string) (*big.Int, error) {
	digest, err := field.HashToField(SHA256String(constraints))
	if err != nil {
		return nil, err
	}
	return poseidon.Hash(digest)
}

// ConstraintCommitment returns the constraint commitment as 64-char hex.
func ConstraintCommitment(constraints string) (string, error) {
	v, err := ConstraintCommitmentField(constraints)
	if err != nil {
		return "", err
	}
	return field.MustHex(v), nil
}
