package field

import (
	"crypto/rand"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModulusIsBN254ScalarField(t *testing.T) {
	want, _ := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	require.Equal(t, 0, Modulus().Cmp(want))

	// Callers get a copy.
	m := Modulus()
	m.SetInt64(7)
	require.Equal(t, 0, Modulus().Cmp(want))
}

func TestCheckRange(t *testing.T) {
	p := Modulus()
	cases := []struct {
		name string
		v    *big.Int
		ok   bool
	}{
		{"zero", big.NewInt(0), true},
		{"one", big.NewInt(1), true},
		{"p-1", new(big.Int).Sub(p, big.NewInt(1)), true},
		{"p", p, false},
		{"p+1", new(big.Int).Add(p, big.NewInt(1)), false},
		{"negative", big.NewInt(-1), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRange(tc.v)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrOutOfRange)
			}
		})
	}
}

func TestAddMulWrap(t *testing.T) {
	pMinus1 := new(big.Int).Sub(Modulus(), big.NewInt(1))

	sum, err := Add(pMinus1, big.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, int64(1), sum.Int64())

	prod, err := Mul(pMinus1, pMinus1) // (-1)*(-1)
	require.NoError(t, err)
	require.Equal(t, int64(1), prod.Int64())

	_, err = Add(Modulus(), big.NewInt(0))
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = Mul(big.NewInt(1), big.NewInt(-3))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestInverse(t *testing.T) {
	for _, n := range []int64{1, 2, 5, 9, 123456789} {
		inv, err := Inverse(big.NewInt(n))
		require.NoError(t, err)
		prod, err := Mul(inv, big.NewInt(n))
		require.NoError(t, err)
		require.Equal(t, int64(1), prod.Int64(), "n=%d", n)
	}

	_, err := Inverse(big.NewInt(0))
	require.ErrorIs(t, err, ErrNotInvertible)
	_, err = Inverse(Modulus())
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestToHex(t *testing.T) {
	s, err := ToHex(big.NewInt(255))
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("0", 62)+"ff", s)

	_, err = ToHex(big.NewInt(-1))
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = ToHex(Modulus())
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestHexRoundTrip(t *testing.T) {
	values := []*big.Int{big.NewInt(0), big.NewInt(1), new(big.Int).Sub(Modulus(), big.NewInt(1))}
	for i := 0; i < 32; i++ {
		v, err := rand.Int(rand.Reader, Modulus())
		require.NoError(t, err)
		values = append(values, v)
	}

	for _, v := range values {
		h, err := ToHex(v)
		require.NoError(t, err)
		require.Len(t, h, 64)
		require.Equal(t, strings.ToLower(h), h)

		back, err := HashToField(h)
		require.NoError(t, err)
		require.Equal(t, 0, back.Cmp(v))

		strict, err := FromHex(h)
		require.NoError(t, err)
		require.Equal(t, 0, strict.Cmp(v))
	}
}

func TestFromHexStrict(t *testing.T) {
	_, err := FromHex("abc")
	require.ErrorIs(t, err, ErrHexTooShort)

	_, err = FromHex(strings.Repeat("0", 65))
	require.ErrorIs(t, err, ErrHexTooLong)

	_, err = FromHex(strings.Repeat("z", 64))
	require.ErrorIs(t, err, ErrInvalidHex)

	_, err = FromHex(strings.Repeat("f", 64))
	require.ErrorIs(t, err, ErrOutOfRange)

	// Uppercase digits are valid hex but not canonical.
	lower := "0a" + strings.Repeat("b", 62)
	_, err = FromHex(lower)
	require.NoError(t, err)
	_, err = FromHex(strings.ToUpper(lower))
	require.ErrorIs(t, err, ErrInvalidHex)

	v, err := HashToField(strings.ToUpper(lower))
	require.NoError(t, err)
	require.Equal(t, lower, MustHex(v))
}

func TestIsCanonicalHex(t *testing.T) {
	require.True(t, IsCanonicalHex(strings.Repeat("0a", 32)))
	require.False(t, IsCanonicalHex(strings.Repeat("0A", 32)))
	require.False(t, IsCanonicalHex(strings.Repeat("0a", 31)))
	require.False(t, IsCanonicalHex(strings.Repeat("0g", 32)))

	require.True(t, IsHex("0A"))
	require.False(t, IsHex(""))
}

func TestHashToFieldReduces(t *testing.T) {
	v, err := HashToField(strings.Repeat("f", 64))
	require.NoError(t, err)
	require.NoError(t, CheckRange(v))

	max := new(big.Int).Lsh(big.NewInt(1), 256)
	max.Sub(max, big.NewInt(1))
	require.Equal(t, 0, v.Cmp(new(big.Int).Mod(max, Modulus())))

	short, err := HashToField("0a")
	require.NoError(t, err)
	require.Equal(t, int64(10), short.Int64())

	for _, bad := range []string{"", "xyz", "-1", "+ff", "0x10"} {
		_, err := HashToField(bad)
		require.ErrorIs(t, err, ErrInvalidHex, "input %q", bad)
	}
}
