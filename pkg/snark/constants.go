package snark

import (
	"math/big"
	"sync"

	"github.com/nobulex/compliance-zkproof/pkg/crypto"
	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// Domain-separation labels standing in for trusted-setup parameters.
const (
	LabelAlphaBeta = "groth16_alpha_beta"
	LabelGamma     = "groth16_gamma"
	LabelDelta     = "groth16_delta"
	LabelBlinding  = "groth16_blinding"
	LabelVK        = "groth16_vk"
)

// seedHexLength truncates label digests to 31 bytes so the seed is below P.
const seedHexLength = 62

// DomainConstants are the fixed values every prover and verifier share.
type DomainConstants struct {
	AlphaBeta *big.Int
	Gamma     *big.Int
	Delta     *big.Int
	Blinding  *big.Int
	VK        *big.Int
}

var (
	constantsOnce sync.Once
	constants     *DomainConstants
)

// Constants returns the shared domain constants. Callers must not modify
// the returned values.
func Constants() *DomainConstants {
	constantsOnce.Do(func() {
		constants = &DomainConstants{
			AlphaBeta: deriveConstant(LabelAlphaBeta),
			Gamma:     deriveConstant(LabelGamma),
			Delta:     deriveConstant(LabelDelta),
			Blinding:  deriveConstant(LabelBlinding),
			VK:        deriveConstant(LabelVK),
		}
	})
	return constants
}

// deriveConstant computes Hash(truncated SHA-256(label)).
func deriveConstant(label string) *big.Int {
	seed, err := field.HashToField(crypto.SHA256String(label)[:seedHexLength])
	if err != nil {
		panic(err)
	}
	v, err := poseidon.Hash(seed)
	if err != nil {
		panic(err)
	}
	return v
}
