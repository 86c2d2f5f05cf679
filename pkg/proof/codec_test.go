package proof_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nobulex/compliance-zkproof/pkg/proof"
)

func TestMarshalRoundTrip(t *testing.T) {
	p := generate(t, proof.Groth16, 3)
	data, err := proof.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"version", "covenantId", "auditLogCommitment", "constraintCommitment",
		"proof", "publicInputs", "proofSystem", "generatedAt", "entryCount",
	} {
		require.Contains(t, raw, key)
	}

	back, err := proof.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, p, back)

	res := proof.VerifyJSON(data)
	require.True(t, res.Valid, res.Errors)
}

func TestVerifyJSONMalformed(t *testing.T) {
	p := generate(t, proof.PoseidonHash, 1)
	data, err := proof.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["publicInputs"] = "not-a-list"
	bad, err := json.Marshal(raw)
	require.NoError(t, err)

	res := proof.VerifyJSON(bad)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "Malformed proof envelope")

	_, err = proof.Unmarshal([]byte("{"))
	require.ErrorIs(t, err, proof.ErrMalformedEnvelope)
}

func TestVerificationResultErrorsNeverNull(t *testing.T) {
	res := proof.Verify(generate(t, proof.PoseidonHash, 0))
	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"valid":true,"errors":[]}`, string(data))
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	proof.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { proof.SetLogger(zerolog.Nop()) })

	generate(t, proof.PoseidonHash, 1)
	require.Contains(t, buf.String(), `"component":"proof"`)
	require.Contains(t, buf.String(), "generated compliance proof")
}
