package snark

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// Verification errors. Each failed equation maps to exactly one of these.
var (
	ErrMalformedProof     = errors.New("snark: malformed proof")
	ErrInvalidPublicInput = errors.New("snark: invalid public inputs")
	ErrVKMismatch         = errors.New("snark: verifying key hash mismatch")
	ErrCMismatch          = errors.New("snark: proof element C mismatch")
	ErrPairingFailed      = errors.New("snark: pairing check failed")
)

// Proof is the serialized proof payload. The elements are 64-char hex field
// elements standing in for curve points.
type Proof struct {
	A      string `json:"a"`
	B      string `json:"b"`
	C      string `json:"c"`
	VKHash string `json:"vkHash"`
}

// Marshal serializes the proof into the envelope's proof string.
func (p *Proof) Marshal() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("snark: marshal proof: %w", err)
	}
	return string(b), nil
}

// ParseProof decodes a serialized proof. Element values are not checked
// here; Verify rejects malformed or out-of-range elements.
func ParseProof(s string) (*Proof, error) {
	var p Proof
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}
	return &p, nil
}

// PublicInputFields maps [subjectId, auditCommitment, constraintCommitment,
// entryCount] into the field. The first three are hex digests; the count is
// a base-10 integer.
func PublicInputFields(publicInputs []string) ([]*big.Int, error) {
	if len(publicInputs) != config.PublicInputCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicInput, len(publicInputs), config.PublicInputCount)
	}
	out := make([]*big.Int, config.PublicInputCount)
	for i := 0; i < config.PublicInputCount-1; i++ {
		v, err := field.HashToField(publicInputs[i])
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", ErrInvalidPublicInput, i, err)
		}
		out[i] = v
	}
	count, err := parseCount(publicInputs[config.PublicInputCount-1])
	if err != nil {
		return nil, err
	}
	out[config.PublicInputCount-1] = count
	return out, nil
}

func parseCount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty entry count", ErrInvalidPublicInput)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("%w: entry count %q is not a decimal integer", ErrInvalidPublicInput, s)
		}
	}
	v, _ := new(big.Int).SetString(s, 10)
	if err := field.CheckRange(v); err != nil {
		return nil, fmt.Errorf("%w: entry count: %v", ErrInvalidPublicInput, err)
	}
	return v, nil
}

// VKHash binds a proof to one circuit shape.
func VKHash(constraintField, subjectField, constraintCount *big.Int) (*big.Int, error) {
	return poseidon.Hash(Constants().VK, constraintField, subjectField, constraintCount)
}

func alphaBeta(constraintField, subjectField *big.Int) (*big.Int, error) {
	return poseidon.Hash(Constants().AlphaBeta, constraintField, subjectField)
}

// gammaTerm folds the public inputs from GAMMA and hashes the accumulator
// with GAMMA once more. It returns the accumulator too, for B.
func gammaTerm(piFields []*big.Int) (term, accum *big.Int, err error) {
	k := Constants()
	accum, err = poseidon.Fold(k.Gamma, piFields...)
	if err != nil {
		return nil, nil, err
	}
	term, err = poseidon.Hash(accum, k.Gamma)
	if err != nil {
		return nil, nil, err
	}
	return term, accum, nil
}

func expectedC(a, b, ab, gt *big.Int) (*big.Int, error) {
	return poseidon.Hash(a, b, ab, gt, Constants().Delta)
}

// pairing evaluates the simulated pairing product for a given C:
// Hash(e(A,B), e(α,β)·e(L,γ)·e(C,δ)) with e(A,B) = Hash(A, B) and the right
// side Hash(alphaBeta, gammaTerm, C, DELTA). Only C varies between the
// two evaluations in Verify, so this duplicates the C comparison.
func pairing(a, b, ab, gt, c *big.Int) (*big.Int, error) {
	lhs, err := poseidon.Hash(a, b)
	if err != nil {
		return nil, err
	}
	rhs, err := poseidon.Hash(ab, gt, c, Constants().Delta)
	if err != nil {
		return nil, err
	}
	return poseidon.Hash(lhs, rhs)
}

// Prove produces the proof for a finalized witness. The subject and
// constraint fields are read from the public inputs.
func Prove(w *Witness, publicInputs []string) (*Proof, error) {
	if w == nil {
		return nil, errors.New("snark: nil witness")
	}
	pi, err := PublicInputFields(publicInputs)
	if err != nil {
		return nil, err
	}
	subjectField, constraintField := pi[0], pi[2]

	vk, err := VKHash(constraintField, subjectField, big.NewInt(int64(w.ConstraintCount())))
	if err != nil {
		return nil, err
	}
	ab, err := alphaBeta(constraintField, subjectField)
	if err != nil {
		return nil, err
	}
	gt, piAccum, err := gammaTerm(pi)
	if err != nil {
		return nil, err
	}
	blindingChain, err := poseidon.Fold(big.NewInt(0), w.Blindings...)
	if err != nil {
		return nil, err
	}
	signalChain, err := poseidon.Fold(big.NewInt(0), w.Signals...)
	if err != nil {
		return nil, err
	}

	a, err := poseidon.Hash(ab, w.AccumulatedState, blindingChain)
	if err != nil {
		return nil, err
	}
	b, err := poseidon.Hash(ab, signalChain, piAccum)
	if err != nil {
		return nil, err
	}
	c, err := expectedC(a, b, ab, gt)
	if err != nil {
		return nil, err
	}

	return &Proof{
		A:      field.MustHex(a),
		B:      field.MustHex(b),
		C:      field.MustHex(c),
		VKHash: field.MustHex(vk),
	}, nil
}

// Verify checks a proof against its public inputs and returns every failed
// check. An empty result means the proof is valid.
func Verify(p *Proof, publicInputs []string, constraintField, subjectField *big.Int) []error {
	if p == nil {
		return []error{fmt.Errorf("%w: nil proof", ErrMalformedProof)}
	}

	var errs []error
	elems := make(map[string]*big.Int, 4)
	for _, el := range []struct{ name, hex string }{
		{"a", p.A}, {"b", p.B}, {"c", p.C}, {"vkHash", p.VKHash},
	} {
		v, err := field.FromHex(el.hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: element %s: %w", ErrMalformedProof, el.name, err))
			continue
		}
		elems[el.name] = v
	}
	pi, err := PublicInputFields(publicInputs)
	if err != nil {
		errs = append(errs, err)
	}
	if err := field.CheckRange(constraintField); err != nil {
		errs = append(errs, fmt.Errorf("%w: constraint field: %v", ErrInvalidPublicInput, err))
	}
	if err := field.CheckRange(subjectField); err != nil {
		errs = append(errs, fmt.Errorf("%w: subject field: %v", ErrInvalidPublicInput, err))
	}
	if len(errs) > 0 {
		return errs
	}

	a, b, c := elems["a"], elems["b"], elems["c"]

	vk, err := VKHash(constraintField, subjectField, pi[config.PublicInputCount-1])
	if err != nil {
		return append(errs, err)
	}
	if vk.Cmp(elems["vkHash"]) != 0 {
		errs = append(errs, ErrVKMismatch)
	}

	ab, err := alphaBeta(constraintField, subjectField)
	if err != nil {
		return append(errs, err)
	}
	gt, _, err := gammaTerm(pi)
	if err != nil {
		return append(errs, err)
	}

	wantC, err := expectedC(a, b, ab, gt)
	if err != nil {
		return append(errs, err)
	}
	if wantC.Cmp(c) != 0 {
		errs = append(errs, ErrCMismatch)
	}

	got, err := pairing(a, b, ab, gt, c)
	if err != nil {
		return append(errs, err)
	}
	want, err := pairing(a, b, ab, gt, wantC)
	if err != nil {
		return append(errs, err)
	}
	if got.Cmp(want) != 0 {
		errs = append(errs, ErrPairingFailed)
	}

	return errs
}
