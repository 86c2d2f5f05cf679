package audit

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/nobulex/compliance-zkproof/pkg/field"
	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// hashCircuit asserts H(In[:n]) == Out.
type hashCircuit struct {
	In  [3]frontend.Variable
	Out frontend.Variable `gnark:",public"`

	N int `gnark:"-"`
}

func (c *hashCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(newHasher(api).hash(c.In[:c.N]...), c.Out)
	return nil
}

func TestInCircuitHashMatchesNative(t *testing.T) {
	inputs := []*big.Int{big.NewInt(0), big.NewInt(42), new(big.Int).Sub(field.Modulus(), big.NewInt(1))}

	for n := 1; n <= 3; n++ {
		want, err := poseidon.Hash(inputs[:n]...)
		require.NoError(t, err)

		assignment := &hashCircuit{Out: want, N: n}
		for i := range assignment.In {
			assignment.In[i] = inputs[i]
		}
		require.NoError(t, test.IsSolved(&hashCircuit{N: n}, assignment, ecc.BN254.ScalarField()), "arity %d", n)

		assignment.Out = new(big.Int).Add(want, big.NewInt(1))
		require.Error(t, test.IsSolved(&hashCircuit{N: n}, assignment, ecc.BN254.ScalarField()), "arity %d", n)
	}
}

func TestEmptyAuditCommitmentConstant(t *testing.T) {
	want, err := poseidon.Hash(big.NewInt(0))
	require.NoError(t, err)
	require.Zero(t, want.Cmp(emptyAuditCommitment))
}
