package audit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// hasher evaluates pkg/poseidon's sponge inside a circuit. The round
// constants and mixing matrix enter as circuit constants, so the in-circuit
// digest equals poseidon.Hash over the same inputs.
type hasher struct {
	api frontend.API
	rc  []*big.Int
	mds [config.Width][config.Width]*big.Int
}

func newHasher(api frontend.API) *hasher {
	p := poseidon.DefaultParams()
	return &hasher{api: api, rc: p.RoundConstantsBig(), mds: p.MDSBig()}
}

// hash pads with 1 then zeros to a multiple of the rate and absorbs Rate
// elements per permutation.
func (h *hasher) hash(inputs ...frontend.Variable) frontend.Variable {
	padded := make([]frontend.Variable, 0, len(inputs)+config.Rate)
	padded = append(padded, inputs...)
	padded = append(padded, 1)
	for len(padded)%config.Rate != 0 {
		padded = append(padded, 0)
	}

	var s [config.Width]frontend.Variable
	for i := range s {
		s[i] = 0
	}
	for off := 0; off < len(padded); off += config.Rate {
		for k := 0; k < config.Rate; k++ {
			s[k] = h.api.Add(s[k], padded[off+k])
		}
		h.permute(&s)
	}
	return s[0]
}

func (h *hasher) permute(s *[config.Width]frontend.Variable) {
	half := config.FullRounds / 2
	rc := 0
	for r := 0; r < config.TotalRounds; r++ {
		full := r < half || r >= half+config.PartialRounds
		for i := range s {
			s[i] = h.api.Add(s[i], h.rc[rc+i])
		}
		if full {
			for i := range s {
				s[i] = h.sbox(s[i])
			}
		} else {
			s[0] = h.sbox(s[0])
		}
		h.mix(s)
		rc += config.Width
	}
}

func (h *hasher) sbox(x frontend.Variable) frontend.Variable {
	x2 := h.api.Mul(x, x)
	x4 := h.api.Mul(x2, x2)
	return h.api.Mul(x4, x)
}

func (h *hasher) mix(s *[config.Width]frontend.Variable) {
	var out [config.Width]frontend.Variable
	for i := 0; i < config.Width; i++ {
		acc := h.api.Mul(h.mds[i][0], s[0])
		for j := 1; j < config.Width; j++ {
			acc = h.api.Add(acc, h.api.Mul(h.mds[i][j], s[j]))
		}
		out[i] = acc
	}
	*s = out
}
