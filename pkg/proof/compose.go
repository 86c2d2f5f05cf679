package proof

import (
	"fmt"

	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// ComposedProofResult binds a parent proof to its children.
type ComposedProofResult struct {
	Parent                *ComplianceProof   `json:"parent"`
	Children              []*ComplianceProof `json:"children"`
	CompositionCommitment string             `json:"compositionCommitment"`
	CompositionValid      bool               `json:"compositionValid"`
	Errors                []string           `json:"errors"`
}

// Compose checks each child against the parent and chains
// acc = Hash(acc, childAudit) from the parent's audit commitment, in
// child order. The commitment is computed even when checks fail.
//
// A child fails when it was generated before the parent, or when
// Hash(parentAudit, childAudit) is zero. The second check only guards
// against a degenerate binding; it does not prove the child derives from
// the parent.
func Compose(parent *ComplianceProof, children []*ComplianceProof) (*ComposedProofResult, error) {
	if parent == nil {
		return nil, ErrMissingParent
	}
	parentField, err := field.HashToField(parent.AuditLogCommitment)
	if err != nil {
		return nil, fmt.Errorf("proof: parent audit commitment: %w", err)
	}
	parentTime, err := ParseTimestamp(parent.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("proof: parent generatedAt: %w", err)
	}

	errs := []string{}
	acc := parentField
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("proof: child[%d] is missing", i)
		}
		childField, err := field.HashToField(child.AuditLogCommitment)
		if err != nil {
			return nil, fmt.Errorf("proof: child[%d] audit commitment: %w", i, err)
		}

		childTime, err := ParseTimestamp(child.GeneratedAt)
		if err != nil {
			errs = append(errs, fmt.Sprintf("child[%d]: invalid generatedAt: %v", i, err))
		} else if childTime.Before(parentTime) {
			errs = append(errs, fmt.Sprintf("child[%d]: generated before parent", i))
		}

		binding, err := poseidon.Hash(parentField, childField)
		if err != nil {
			return nil, fmt.Errorf("proof: child[%d] binding: %w", i, err)
		}
		if binding.Sign() == 0 {
			errs = append(errs, fmt.Sprintf("child[%d]: degenerate binding to parent", i))
		}

		acc, err = poseidon.Hash(acc, childField)
		if err != nil {
			return nil, fmt.Errorf("proof: child[%d] composition: %w", i, err)
		}
	}

	res := &ComposedProofResult{
		Parent:                parent,
		Children:              children,
		CompositionCommitment: field.MustHex(acc),
		CompositionValid:      len(errs) == 0,
		Errors:                errs,
	}

	logger.Debug().
		Str("parent", parent.CovenantID).
		Int("children", len(children)).
		Bool("valid", res.CompositionValid).
		Msg("composed proofs")

	return res, nil
}

// VerifyComposition recomputes a composition from its parent and children
// and compares the commitment and validity with the stored values.
func VerifyComposition(r *ComposedProofResult) VerificationResult {
	if r == nil {
		return newResult([]string{"Composition is missing"})
	}
	fresh, err := Compose(r.Parent, r.Children)
	if err != nil {
		return newResult([]string{fmt.Sprintf("Cannot recompute composition: %v", err)})
	}

	var errs []string
	errs = append(errs, fresh.Errors...)
	if fresh.CompositionCommitment != r.CompositionCommitment {
		errs = append(errs, "Composition commitment mismatch")
	}
	if fresh.CompositionValid != r.CompositionValid {
		errs = append(errs, "Composition validity mismatch")
	}
	return newResult(errs)
}

