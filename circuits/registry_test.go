package circuits_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nobulex/compliance-zkproof/circuits"
	"github.com/nobulex/compliance-zkproof/circuits/audit"
	"github.com/nobulex/compliance-zkproof/pkg/setup"
)

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"audit", "audit_plonk"}, circuits.Names())

	e, err := circuits.Lookup(audit.CircuitName)
	require.NoError(t, err)
	require.Equal(t, setup.Groth16Backend, e.Backend)
	require.IsType(t, &audit.AuditCircuit{}, e.NewCircuit())

	e, err = circuits.Lookup(audit.PlonkCircuitName)
	require.NoError(t, err)
	require.Equal(t, setup.PlonkBackend, e.Backend)

	_, err = circuits.Lookup("poi")
	require.ErrorContains(t, err, "unknown circuit")
}
