package audit_test

import (
	"encoding/json"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nobulex/compliance-zkproof/circuits/audit"
	"github.com/nobulex/compliance-zkproof/pkg/crypto"
	"github.com/nobulex/compliance-zkproof/pkg/proof"
	"github.com/nobulex/compliance-zkproof/pkg/setup"
)

func entries(n int) []crypto.AuditEntry {
	out := make([]crypto.AuditEntry, n)
	for i := range out {
		out[i] = crypto.AuditEntry{Hash: crypto.SHA256String("circuit-entry-" + strconv.Itoa(i))}
	}
	return out
}

func envelope(t *testing.T, system proof.ProofSystem, es []crypto.AuditEntry) *proof.ComplianceProof {
	t.Helper()
	p, err := proof.Generate(proof.Input{
		CovenantID:   crypto.SHA256String("circuit-covenant"),
		Constraints:  "permit read on '/data/**'",
		AuditEntries: es,
		ProofSystem:  system,
		Now:          func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return p
}

func witnessFor(t *testing.T, n int) *audit.WitnessResult {
	t.Helper()
	es := entries(n)
	w, err := audit.PrepareWitness(envelope(t, proof.PoseidonHash, es), es)
	require.NoError(t, err)
	return w
}

func TestAuditCircuitSolved(t *testing.T) {
	for _, n := range []int{0, 1, 5, audit.MaxEntries} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			w := witnessFor(t, n)
			require.NoError(t, test.IsSolved(&audit.AuditCircuit{}, &w.Assignment, ecc.BN254.ScalarField()))
		})
	}
}

func TestAuditCircuitRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *audit.AuditCircuit)
	}{
		{"entry count", func(c *audit.AuditCircuit) { c.EntryCount = 2 }},
		{"mask gap", func(c *audit.AuditCircuit) { c.Active[1] = 0; c.Active[3] = 1 }},
		{"mask not boolean", func(c *audit.AuditCircuit) { c.Active[0] = 2 }},
		{"entry value", func(c *audit.AuditCircuit) { c.Entries[0] = 7 }},
		{"inactive entry counted", func(c *audit.AuditCircuit) { c.Active[3] = 1 }},
		{"proof value", func(c *audit.AuditCircuit) { c.ProofValue = big.NewInt(1) }},
		{"subject id", func(c *audit.AuditCircuit) { c.SubjectID = big.NewInt(1) }},
		{"audit commitment", func(c *audit.AuditCircuit) { c.AuditCommitment = big.NewInt(1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := witnessFor(t, 3)
			assignment := w.Assignment
			tc.mutate(&assignment)
			require.Error(t, test.IsSolved(&audit.AuditCircuit{}, &assignment, ecc.BN254.ScalarField()))
		})
	}
}

func TestPrepareWitnessErrors(t *testing.T) {
	es := entries(2)

	_, err := audit.PrepareWitness(envelope(t, proof.Groth16, es), es)
	require.ErrorIs(t, err, audit.ErrNotHashCommitment)

	many := entries(audit.MaxEntries + 1)
	_, err = audit.PrepareWitness(envelope(t, proof.PoseidonHash, many), many)
	require.ErrorIs(t, err, audit.ErrTooManyEntries)

	p := envelope(t, proof.PoseidonHash, es)
	_, err = audit.PrepareWitness(p, es[:1])
	require.ErrorIs(t, err, audit.ErrEntriesMismatch)

	_, err = audit.PrepareWitness(p, []crypto.AuditEntry{es[1], es[0]})
	require.ErrorIs(t, err, audit.ErrEntriesMismatch)

	_, err = audit.PrepareWitness(nil, es)
	require.Error(t, err)
}

// TestAuditCircuitEndToEnd compiles the circuit, performs a dev setup,
// proves a five-entry log and verifies the proof.
func TestAuditCircuitEndToEnd(t *testing.T) {
	ccs, err := setup.CompileCircuit(&audit.AuditCircuit{})
	require.NoError(t, err)
	t.Logf("constraints: %d", ccs.GetNbConstraints())

	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	w := witnessFor(t, 5)
	full, err := frontend.NewWitness(&w.Assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
	public, err := full.Public()
	require.NoError(t, err)

	p, err := groth16.Prove(ccs, pk, full)
	require.NoError(t, err)
	require.NoError(t, groth16.Verify(p, vk, public))

	// The same proof must not verify against another log's public inputs.
	other := witnessFor(t, 4)
	otherFull, err := frontend.NewWitness(&other.Assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
	otherPublic, err := otherFull.Public()
	require.NoError(t, err)
	require.Error(t, groth16.Verify(p, vk, otherPublic))
}

func TestAuditExportFixture(t *testing.T) {
	ccs, err := setup.CompileCircuit(&audit.AuditCircuit{})
	require.NoError(t, err)
	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, setup.ExportKeys(pk, vk, dir, audit.CircuitName))

	out, err := audit.ExportProofFixture(dir, setup.Groth16Backend, zerolog.Nop())
	require.NoError(t, err)

	var fixture audit.ProofFixture
	require.NoError(t, json.Unmarshal(out, &fixture))
	require.Equal(t, "groth16", fixture.Backend)
	require.Len(t, fixture.Groth16Proof, 8)
	require.Empty(t, fixture.PlonkProof)
	require.True(t, proof.Verify(fixture.Envelope).Valid)

	again, err := json.MarshalIndent(fixture, "", "  ")
	require.NoError(t, err)
	require.JSONEq(t, string(out), string(again))
}

func TestAuditExportFixturePlonk(t *testing.T) {
	if testing.Short() {
		t.Skip("PLONK setup is slow")
	}
	ccs, err := setup.CompileCircuitForBackend(&audit.AuditCircuit{}, setup.PlonkBackend)
	require.NoError(t, err)
	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	require.NoError(t, err)
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, setup.ExportPlonkKeys(pk, vk, dir, audit.PlonkCircuitName))

	out, err := audit.ExportProofFixture(dir, setup.PlonkBackend, zerolog.Nop())
	require.NoError(t, err)

	var fixture audit.ProofFixture
	require.NoError(t, json.Unmarshal(out, &fixture))
	require.Equal(t, "plonk", fixture.Backend)
	require.NotEmpty(t, fixture.PlonkProof)
	require.Empty(t, fixture.Groth16Proof)
}
