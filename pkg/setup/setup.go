// Package setup compiles gnark circuits and produces, exports and loads
// their proving and verifying keys for the Groth16 and PLONK backends.
package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "setup").Logger()
}

// Backend selects which proof system to use for a circuit.
type Backend int

const (
	Groth16Backend Backend = iota
	PlonkBackend
)

func (b Backend) String() string {
	switch b {
	case Groth16Backend:
		return "groth16"
	case PlonkBackend:
		return "plonk"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// CompileCircuit compiles a gnark circuit into an R1CS for Groth16.
func CompileCircuit(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	return CompileCircuitForBackend(circuit, Groth16Backend)
}

// CompileCircuitForBackend compiles a circuit using the builder for the given backend.
func CompileCircuitForBackend(circuit frontend.Circuit, b Backend) (constraint.ConstraintSystem, error) {
	var builder frontend.NewBuilder
	switch b {
	case Groth16Backend:
		builder = r1cs.NewBuilder
	case PlonkBackend:
		builder = scs.NewBuilder
	default:
		return nil, fmt.Errorf("unknown backend: %d", b)
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), builder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	logger.Debug().
		Stringer("backend", b).
		Int("constraints", ccs.GetNbConstraints()).
		Msg("compiled circuit")
	return ccs, nil
}

// DevSetup performs a single-party trusted setup (NOT for production) and
// writes the keys and Solidity verifier to outputDir.
func DevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	logger.Warn().
		Str("circuit", circuitName).
		Msg("single-party Groth16 setup (1-of-1 trust assumption); do not use these keys in production")

	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}

	return ExportKeys(pk, vk, outputDir, circuitName)
}

// PlonkDevSetup performs a PLONK setup over an unsafe KZG SRS (NOT for
// production) and writes the keys and Solidity verifier to outputDir.
func PlonkDevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	logger.Warn().
		Str("circuit", circuitName).
		Msg("unsafe KZG SRS (1-of-1 trust assumption); do not use these keys in production")

	ccs, err := CompileCircuitForBackend(circuit, PlonkBackend)
	if err != nil {
		return err
	}

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return fmt.Errorf("generate unsafe KZG SRS: %w", err)
	}

	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return fmt.Errorf("plonk setup: %w", err)
	}

	return ExportPlonkKeys(pk, vk, outputDir, circuitName)
}

// ExportKeys writes the Groth16 keys and Solidity verifier to outputDir as
// <circuitName>_prover.key, <circuitName>_verifier.key and
// <circuitName>_verifier.sol.
func ExportKeys(pk groth16.ProvingKey, vk groth16.VerifyingKey, outputDir, circuitName string) error {
	return exportKeys(pk, vk, func(w io.Writer) error { return vk.ExportSolidity(w) }, outputDir, circuitName)
}

// ExportPlonkKeys writes the PLONK keys and Solidity verifier to outputDir.
func ExportPlonkKeys(pk plonk.ProvingKey, vk plonk.VerifyingKey, outputDir, circuitName string) error {
	return exportKeys(pk, vk, func(w io.Writer) error { return vk.ExportSolidity(w) }, outputDir, circuitName)
}

func exportKeys(pk, vk io.WriterTo, exportSolidity func(io.Writer) error, outputDir, circuitName string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	solPath := filepath.Join(outputDir, circuitName+"_verifier.sol")
	f, err := os.Create(solPath)
	if err != nil {
		return fmt.Errorf("create solidity verifier: %w", err)
	}
	if err := exportSolidity(f); err != nil {
		f.Close()
		return fmt.Errorf("export solidity verifier: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close solidity verifier: %w", err)
	}

	vkPath := filepath.Join(outputDir, circuitName+"_verifier.key")
	if err := saveObject(vkPath, vk); err != nil {
		return fmt.Errorf("write verifying key: %w", err)
	}

	pkPath := filepath.Join(outputDir, circuitName+"_prover.key")
	if err := saveObject(pkPath, pk); err != nil {
		return fmt.Errorf("write proving key: %w", err)
	}

	logger.Info().
		Str("proving_key", pkPath).
		Str("verifying_key", vkPath).
		Str("solidity", solPath).
		Msg("exported keys")
	return nil
}

// LoadKeys loads the Groth16 proving and verifying keys from dir.
func LoadKeys(dir, circuitName string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := loadKeys(dir, circuitName, pk, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

// LoadPlonkKeys loads the PLONK proving and verifying keys from dir.
func LoadPlonkKeys(dir, circuitName string) (plonk.ProvingKey, plonk.VerifyingKey, error) {
	pk := plonk.NewProvingKey(ecc.BN254)
	vk := plonk.NewVerifyingKey(ecc.BN254)
	if err := loadKeys(dir, circuitName, pk, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

func loadKeys(dir, circuitName string, pk, vk io.ReaderFrom) error {
	if err := loadObject(filepath.Join(dir, circuitName+"_prover.key"), pk); err != nil {
		return fmt.Errorf("read proving key: %w", err)
	}
	if err := loadObject(filepath.Join(dir, circuitName+"_verifier.key"), vk); err != nil {
		return fmt.Errorf("read verifying key: %w", err)
	}
	return nil
}

func saveObject(path string, obj io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := obj.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadObject(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = obj.ReadFrom(f)
	return err
}
