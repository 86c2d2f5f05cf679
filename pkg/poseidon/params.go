package poseidon

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/minio/sha256-simd"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/field"
)

// Params holds the permutation tables. They are built once and shared
// read-only by every caller.
type Params struct {
	// RoundConstants has Width constants per round, round-major.
	RoundConstants []fr.Element
	// MDS is the Cauchy mixing matrix, MDS[row][col].
	MDS [config.Width][config.Width]fr.Element
}

var (
	paramsOnce sync.Once
	params     *Params
)

// DefaultParams returns the shared permutation tables.
func DefaultParams() *Params {
	paramsOnce.Do(func() {
		params = &Params{
			RoundConstants: generateRoundConstants(),
			MDS:            generateMDS(),
		}
	})
	return params
}

// RoundConstantsBig returns the round constants as big integers, for
// consumers (such as circuits) that work outside fr.Element.
func (p *Params) RoundConstantsBig() []*big.Int {
	out := make([]*big.Int, len(p.RoundConstants))
	for i := range p.RoundConstants {
		out[i] = field.FromElement(&p.RoundConstants[i])
	}
	return out
}

// MDSBig returns the mixing matrix as big integers.
func (p *Params) MDSBig() [config.Width][config.Width]*big.Int {
	var out [config.Width][config.Width]*big.Int
	for i := 0; i < config.Width; i++ {
		for j := 0; j < config.Width; j++ {
			out[i][j] = field.FromElement(&p.MDS[i][j])
		}
	}
	return out
}

// generateRoundConstants derives rc[i] = SHA256("poseidon_rc_<i>") mod P so
// the constants can be audited from their labels.
func generateRoundConstants() []fr.Element {
	n := config.TotalRounds * config.Width
	rcs := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		digest := sha256.Sum256([]byte(config.RoundConstantLabel + strconv.Itoa(i)))
		v, err := field.HashToField(hex.EncodeToString(digest[:]))
		if err != nil {
			panic(err) // a hex-encoded digest always parses
		}
		rcs[i].SetBigInt(v)
	}
	return rcs
}

// generateMDS builds M[i][j] = 1/(x_i + y_j) with x_i = i+1, y_j = Width+j+1.
// The x and y sets are disjoint, so every entry is defined and the matrix
// is invertible.
func generateMDS() [config.Width][config.Width]fr.Element {
	var m [config.Width][config.Width]fr.Element
	for i := 0; i < config.Width; i++ {
		for j := 0; j < config.Width; j++ {
			sum := big.NewInt(int64((i + 1) + (config.Width + j + 1)))
			inv, err := field.Inverse(sum)
			if err != nil {
				panic(err)
			}
			m[i][j].SetBigInt(inv)
		}
	}
	return m
}
