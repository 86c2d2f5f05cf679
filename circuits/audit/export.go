package audit

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/plonk"
	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/nobulex/compliance-zkproof/pkg/crypto"
	"github.com/nobulex/compliance-zkproof/pkg/proof"
	"github.com/nobulex/compliance-zkproof/pkg/setup"
)

// ProofFixture holds a compliance envelope together with a succinct proof
// of its hash commitment, in the form a Solidity verifier consumes.
type ProofFixture struct {
	Backend      string                 `json:"backend"`
	Envelope     *proof.ComplianceProof `json:"envelope"`
	PublicInputs [5]string              `json:"public_inputs"`

	// Groth16: [A.x, A.y, B.x1, B.x0, B.y1, B.y0, C.x, C.y]
	Groth16Proof []string `json:"groth16_proof,omitempty"`
	// PLONK: MarshalSolidity bytes
	PlonkProof string `json:"plonk_proof,omitempty"`
}

// FixtureInput returns the deterministic proof input used for fixtures.
func FixtureInput() proof.Input {
	entries := make([]crypto.AuditEntry, 3)
	for i := range entries {
		entries[i] = crypto.AuditEntry{Hash: crypto.SHA256String("fixture-action-" + strconv.Itoa(i))}
	}
	return proof.Input{
		CovenantID:   crypto.SHA256String("fixture-covenant"),
		Constraints:  "permit read on '/data/**'",
		AuditEntries: entries,
		ProofSystem:  proof.PoseidonHash,
		Now:          func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// ExportProofFixture generates a deterministic envelope, proves its hash
// commitment with keys loaded from keysDir and verifies the proof in Go.
func ExportProofFixture(keysDir string, backend setup.Backend, log zerolog.Logger) ([]byte, error) {
	in := FixtureInput()
	envelope, err := proof.Generate(in)
	if err != nil {
		return nil, fmt.Errorf("generate envelope: %w", err)
	}
	result, err := PrepareWitness(envelope, in.AuditEntries)
	if err != nil {
		return nil, fmt.Errorf("prepare witness: %w", err)
	}

	log.Info().Stringer("backend", backend).Msg("compiling audit circuit")
	ccs, err := setup.CompileCircuitForBackend(&AuditCircuit{}, backend)
	if err != nil {
		return nil, err
	}

	full, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	public, err := full.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	fixture := ProofFixture{
		Backend:  backend.String(),
		Envelope: envelope,
	}
	for i, v := range result.PublicInputs {
		fixture.PublicInputs[i] = fmt.Sprintf("0x%064x", v)
	}

	switch backend {
	case setup.Groth16Backend:
		fixture.Groth16Proof, err = proveGroth16(keysDir, ccs, full, public)
	case setup.PlonkBackend:
		fixture.PlonkProof, err = provePlonk(keysDir, ccs, full, public)
	default:
		err = fmt.Errorf("unknown backend: %d", backend)
	}
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("covenant_id", envelope.CovenantID).
		Int("entry_count", envelope.EntryCount).
		Msg("audit proof verified in Go")

	out, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}
	return out, nil
}

func proveGroth16(keysDir string, ccs constraint.ConstraintSystem, full, public witness.Witness) ([]string, error) {
	pk, vk, err := setup.LoadKeys(keysDir, CircuitName)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	p, err := groth16.Prove(ccs, pk, full)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}
	if err := groth16.Verify(p, vk, public); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	bn254Proof := p.(*groth16bn254.Proof)
	var aX, aY, bX0, bX1, bY0, bY1, cX, cY big.Int
	bn254Proof.Ar.X.BigInt(&aX)
	bn254Proof.Ar.Y.BigInt(&aY)
	bn254Proof.Bs.X.A0.BigInt(&bX0)
	bn254Proof.Bs.X.A1.BigInt(&bX1)
	bn254Proof.Bs.Y.A0.BigInt(&bY0)
	bn254Proof.Bs.Y.A1.BigInt(&bY1)
	bn254Proof.Krs.X.BigInt(&cX)
	bn254Proof.Krs.Y.BigInt(&cY)

	points := []*big.Int{&aX, &aY, &bX1, &bX0, &bY1, &bY0, &cX, &cY}
	out := make([]string, len(points))
	for i, v := range points {
		out[i] = fmt.Sprintf("0x%064x", v)
	}
	return out, nil
}

func provePlonk(keysDir string, ccs constraint.ConstraintSystem, full, public witness.Witness) (string, error) {
	pk, vk, err := setup.LoadPlonkKeys(keysDir, PlonkCircuitName)
	if err != nil {
		return "", fmt.Errorf("load keys: %w", err)
	}
	p, err := plonk.Prove(ccs, pk, full)
	if err != nil {
		return "", fmt.Errorf("prove: %w", err)
	}
	if err := plonk.Verify(p, vk, public); err != nil {
		return "", fmt.Errorf("verify: %w", err)
	}
	return "0x" + hex.EncodeToString(p.(*plonkbn254.Proof).MarshalSolidity()), nil
}
