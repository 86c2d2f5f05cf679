// Package poseidon implements a Poseidon-style sponge hash over the BN254
// scalar field: width 3 (rate 2, capacity 1), 8 full and 57 partial rounds
// with an x^5 S-box and a Cauchy mixing matrix.
//
// Round constants are derived from SHA-256 of public labels instead of the
// Grain LFSR of the reference Poseidon instance, so outputs differ from
// circomlib or gnark-crypto Poseidon2.
package poseidon

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/field"
)

// ErrNoInputs is returned when Hash is called with an empty input list.
var ErrNoInputs = errors.New("poseidon: at least one input is required")

// State is the permutation state.
type State [config.Width]fr.Element

// Permute applies the full permutation in place:
// half of the full rounds, all partial rounds, then the remaining full rounds.
func Permute(s *State) {
	p := DefaultParams()
	half := config.FullRounds / 2
	rc := 0

	for r := 0; r < half; r++ {
		fullRound(s, p, rc)
		rc += config.Width
	}
	for r := 0; r < config.PartialRounds; r++ {
		partialRound(s, p, rc)
		rc += config.Width
	}
	for r := 0; r < half; r++ {
		fullRound(s, p, rc)
		rc += config.Width
	}
}

func fullRound(s *State, p *Params, rc int) {
	for i := range s {
		s[i].Add(&s[i], &p.RoundConstants[rc+i])
		sbox(&s[i])
	}
	mix(s, p)
}

func partialRound(s *State, p *Params, rc int) {
	for i := range s {
		s[i].Add(&s[i], &p.RoundConstants[rc+i])
	}
	sbox(&s[0])
	mix(s, p)
}

// sbox computes x^5.
func sbox(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(&x4, x)
}

func mix(s *State, p *Params) {
	var out State
	var t fr.Element
	for i := 0; i < config.Width; i++ {
		for j := 0; j < config.Width; j++ {
			t.Mul(&p.MDS[i][j], &s[j])
			out[i].Add(&out[i], &t)
		}
	}
	*s = out
}

// Pad appends the domain separator 1 and then zeros until the length is a
// multiple of the rate.
func Pad(inputs []fr.Element) []fr.Element {
	padded := make([]fr.Element, len(inputs), len(inputs)+config.Rate)
	copy(padded, inputs)
	var one fr.Element
	one.SetOne()
	padded = append(padded, one)
	for len(padded)%config.Rate != 0 {
		padded = append(padded, fr.Element{})
	}
	return padded
}

// HashElements hashes already-reduced field elements. It never fails for a
// non-empty input.
func HashElements(inputs ...fr.Element) (fr.Element, error) {
	if len(inputs) == 0 {
		return fr.Element{}, ErrNoInputs
	}
	var s State
	padded := Pad(inputs)
	for off := 0; off < len(padded); off += config.Rate {
		for k := 0; k < config.Rate; k++ {
			s[k].Add(&s[k], &padded[off+k])
		}
		Permute(&s)
	}
	return s[0], nil
}

// Hash hashes one or more canonical field elements into a single field
// element. Inputs outside [0, P) are rejected. The result depends on input
// order: Hash(a, b) != Hash(b, a) in general.
func Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	elems := make([]fr.Element, len(inputs))
	for i, in := range inputs {
		e, err := field.ToElement(in)
		if err != nil {
			return nil, fmt.Errorf("poseidon: input %d: %w", i, err)
		}
		elems[i] = e
	}
	out, err := HashElements(elems...)
	if err != nil {
		return nil, err
	}
	return field.FromElement(&out), nil
}

// HashHex hashes canonical inputs and returns the 64-char hex digest.
func HashHex(inputs ...*big.Int) (string, error) {
	h, err := Hash(inputs...)
	if err != nil {
		return "", err
	}
	return field.MustHex(h), nil
}

// Fold chains acc = Hash(acc, x) over xs starting from seed. An empty xs
// returns seed unchanged.
func Fold(seed *big.Int, xs ...*big.Int) (*big.Int, error) {
	if err := field.CheckRange(seed); err != nil {
		return nil, fmt.Errorf("poseidon: fold seed: %w", err)
	}
	acc := new(big.Int).Set(seed)
	for i, x := range xs {
		next, err := Hash(acc, x)
		if err != nil {
			return nil, fmt.Errorf("poseidon: fold step %d: %w", i, err)
		}
		acc = next
	}
	return acc, nil
}
