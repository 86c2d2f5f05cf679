// Package field implements arithmetic over the BN254 scalar field.
//
// Every value crossing the package boundary is a *big.Int in [0, P). Values
// outside that range are rejected with ErrOutOfRange rather than reduced;
// only HashToField reduces, because it maps arbitrary digests into the field.
package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nobulex/compliance-zkproof/config"
)

var (
	ErrOutOfRange    = errors.New("field: value out of range [0, P)")
	ErrInvalidHex    = errors.New("field: invalid hex")
	ErrHexTooShort   = errors.New("field: hex too short")
	ErrHexTooLong    = errors.New("field: hex too long")
	ErrNotInvertible = errors.New("field: zero has no inverse")
)

// modulus is P = 21888242871839275222246405745257275088548364400416034343698204186575808495617.
var modulus = ecc.BN254.ScalarField()

// Modulus returns a copy of the field prime P.
func Modulus() *big.Int {
	return new(big.Int).Set(modulus)
}

// CheckRange reports whether v is a canonical field element.
func CheckRange(v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrOutOfRange)
	}
	if v.Sign() < 0 || v.Cmp(modulus) >= 0 {
		return fmt.Errorf("%w: %s", ErrOutOfRange, v.String())
	}
	return nil
}

// ToElement converts a canonical value into its fr.Element form.
func ToElement(v *big.Int) (fr.Element, error) {
	var e fr.Element
	if err := CheckRange(v); err != nil {
		return e, err
	}
	e.SetBigInt(v)
	return e, nil
}

// FromElement converts an fr.Element back into a canonical *big.Int.
func FromElement(e *fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

// Add returns a + b mod P.
func Add(a, b *big.Int) (*big.Int, error) {
	ea, err := ToElement(a)
	if err != nil {
		return nil, err
	}
	eb, err := ToElement(b)
	if err != nil {
		return nil, err
	}
	ea.Add(&ea, &eb)
	return FromElement(&ea), nil
}

// Mul returns a * b mod P.
func Mul(a, b *big.Int) (*big.Int, error) {
	ea, err := ToElement(a)
	if err != nil {
		return nil, err
	}
	eb, err := ToElement(b)
	if err != nil {
		return nil, err
	}
	ea.Mul(&ea, &eb)
	return FromElement(&ea), nil
}

// Inverse returns a^-1 mod P. It is only needed while building the mixing
// matrix, so it favours clarity over speed.
func Inverse(a *big.Int) (*big.Int, error) {
	if err := CheckRange(a); err != nil {
		return nil, err
	}
	if a.Sign() == 0 {
		return nil, ErrNotInvertible
	}
	// Extended Euclid: track the Bezout coefficient of a.
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(modulus)
	oldS, s := big.NewInt(1), big.NewInt(0)
	q, tmp := new(big.Int), new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)
	}
	return oldS.Mod(oldS, modulus), nil
}

// ToHex encodes v as 64 lowercase, zero-padded hex characters.
func ToHex(v *big.Int) (string, error) {
	if err := CheckRange(v); err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*x", config.HexLength, v), nil
}

// MustHex is ToHex for values already known to be canonical, such as hash
// outputs.
func MustHex(v *big.Int) string {
	s, err := ToHex(v)
	if err != nil {
		panic(err)
	}
	return s
}

// FromHex strictly parses a canonical field element: 64 lowercase hex
// characters encoding a value below P.
func FromHex(s string) (*big.Int, error) {
	switch {
	case len(s) < config.HexLength:
		return nil, fmt.Errorf("%w: got %d characters, want %d", ErrHexTooShort, len(s), config.HexLength)
	case len(s) > config.HexLength:
		return nil, fmt.Errorf("%w: got %d characters, want %d", ErrHexTooLong, len(s), config.HexLength)
	}
	if !IsCanonicalHex(s) {
		return nil, fmt.Errorf("%w: %q is not lowercase hex", ErrInvalidHex, s)
	}
	v, err := parseHex(s)
	if err != nil {
		return nil, err
	}
	if err := CheckRange(v); err != nil {
		return nil, err
	}
	return v, nil
}

// HashToField interprets a hex digest of any length as a big-endian integer
// and reduces it mod P. Oversized digests are reduced, never rejected.
func HashToField(s string) (*big.Int, error) {
	v, err := parseHex(s)
	if err != nil {
		return nil, err
	}
	return v.Mod(v, modulus), nil
}

// IsCanonicalHex reports whether s is exactly 64 lowercase hex characters,
// the form ToHex produces.
func IsCanonicalHex(s string) bool {
	if len(s) != config.HexLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// IsHex reports whether s is a non-empty string of hex digits in either case.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func parseHex(s string) (*big.Int, error) {
	if !IsHex(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return v, nil
}
