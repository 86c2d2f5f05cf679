package setup

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16/bn254/mpcsetup"
	cs_bn254 "github.com/consensys/gnark/constraint/bn254"
	"github.com/consensys/gnark/frontend"
)

// DefaultCeremonyDir is the default directory for ceremony files.
const DefaultCeremonyDir = "ceremony"

// minBeaconBytes is the minimum entropy of the sealing beacon.
const minBeaconBytes = 16

var (
	ErrNoContributions = errors.New("setup: no ceremony contributions found")
	ErrInvalidBeacon   = errors.New("setup: invalid beacon")
)

// Ceremony runs a two-phase Groth16 MPC setup for one circuit. Each step
// reads and writes numbered state files in Dir, so contributors can run
// on separate machines and pass the directory along.
type Ceremony struct {
	Dir     string
	Circuit frontend.Circuit
}

// NewCeremony returns a ceremony rooted at dir, or DefaultCeremonyDir when
// dir is empty.
func NewCeremony(dir string, circuit frontend.Circuit) *Ceremony {
	if dir == "" {
		dir = DefaultCeremonyDir
	}
	return &Ceremony{Dir: dir, Circuit: circuit}
}

func (c *Ceremony) compile() (*cs_bn254.R1CS, error) {
	ccs, err := CompileCircuit(c.Circuit)
	if err != nil {
		return nil, err
	}
	r1cs, ok := ccs.(*cs_bn254.R1CS)
	if !ok {
		return nil, fmt.Errorf("setup: unexpected constraint system %T", ccs)
	}
	return r1cs, nil
}

// P1Init initializes Phase 1 (Powers of Tau).
func (c *Ceremony) P1Init() error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create ceremony dir: %w", err)
	}
	r1cs, err := c.compile()
	if err != nil {
		return err
	}

	n := ecc.NextPowerOfTwo(uint64(r1cs.GetNbConstraints()))
	logger.Info().
		Uint64("domain_size", n).
		Int("log2", bits.Len64(n)-1).
		Int("constraints", r1cs.GetNbConstraints()).
		Msg("phase 1 init")

	path, err := c.nextContribPath("phase1")
	if err != nil {
		return err
	}
	if err := saveObject(path, mpcsetup.NewPhase1(n)); err != nil {
		return fmt.Errorf("write phase 1 state: %w", err)
	}
	logger.Info().Str("path", path).Msg("wrote initial phase 1 state")
	return nil
}

// P1Contribute adds a Phase 1 contribution on top of the latest state.
func (c *Ceremony) P1Contribute() error {
	latest, err := c.latestContrib("phase1")
	if err != nil {
		return err
	}

	var p mpcsetup.Phase1
	if err := loadObject(latest, &p); err != nil {
		return fmt.Errorf("read %s: %w", latest, err)
	}
	p.Contribute()

	path, err := c.nextContribPath("phase1")
	if err != nil {
		return err
	}
	if err := saveObject(path, &p); err != nil {
		return fmt.Errorf("write phase 1 contribution: %w", err)
	}
	logger.Info().Str("from", latest).Str("path", path).Msg("wrote phase 1 contribution")
	return nil
}

// P1Verify verifies every Phase 1 contribution and seals the result with a
// public random beacon.
func (c *Ceremony) P1Verify(beaconHex string) error {
	beacon, err := parseBeacon(beaconHex)
	if err != nil {
		return err
	}
	r1cs, err := c.compile()
	if err != nil {
		return err
	}
	n := ecc.NextPowerOfTwo(uint64(r1cs.GetNbConstraints()))

	contribs, err := c.findContribs("phase1")
	if err != nil {
		return err
	}
	if len(contribs) < 2 {
		return fmt.Errorf("%w: need the init file and at least one phase 1 contribution", ErrNoContributions)
	}

	// The init file carries no contribution and is not verified.
	phases := make([]*mpcsetup.Phase1, len(contribs)-1)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase1)
		if err := loadObject(path, phases[i]); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	commons, err := mpcsetup.VerifyPhase1(n, beacon, phases...)
	if err != nil {
		return fmt.Errorf("phase 1 verification failed: %w", err)
	}

	srsPath := c.srsPath()
	if err := saveObject(srsPath, &commons); err != nil {
		return fmt.Errorf("write srs commons: %w", err)
	}
	logger.Info().Int("contributions", len(phases)).Str("path", srsPath).Msg("phase 1 verified and sealed")
	return nil
}

// P2Init initializes Phase 2 (circuit-specific) from the sealed Phase 1.
func (c *Ceremony) P2Init() error {
	r1cs, err := c.compile()
	if err != nil {
		return err
	}
	var commons mpcsetup.SrsCommons
	if err := loadObject(c.srsPath(), &commons); err != nil {
		return fmt.Errorf("read srs commons: %w", err)
	}

	var p mpcsetup.Phase2
	p.Initialize(r1cs, &commons)

	path, err := c.nextContribPath("phase2")
	if err != nil {
		return err
	}
	if err := saveObject(path, &p); err != nil {
		return fmt.Errorf("write phase 2 state: %w", err)
	}
	logger.Info().Str("path", path).Msg("wrote initial phase 2 state")
	return nil
}

// P2Contribute adds a Phase 2 contribution on top of the latest state.
func (c *Ceremony) P2Contribute() error {
	latest, err := c.latestContrib("phase2")
	if err != nil {
		return err
	}

	var p mpcsetup.Phase2
	if err := loadObject(latest, &p); err != nil {
		return fmt.Errorf("read %s: %w", latest, err)
	}
	p.Contribute()

	path, err := c.nextContribPath("phase2")
	if err != nil {
		return err
	}
	if err := saveObject(path, &p); err != nil {
		return fmt.Errorf("write phase 2 contribution: %w", err)
	}
	logger.Info().Str("from", latest).Str("path", path).Msg("wrote phase 2 contribution")
	return nil
}

// P2Verify verifies the Phase 2 contributions, seals them and exports the
// final keys to outputDir.
func (c *Ceremony) P2Verify(beaconHex, outputDir, circuitName string) error {
	beacon, err := parseBeacon(beaconHex)
	if err != nil {
		return err
	}
	r1cs, err := c.compile()
	if err != nil {
		return err
	}
	var commons mpcsetup.SrsCommons
	if err := loadObject(c.srsPath(), &commons); err != nil {
		return fmt.Errorf("read srs commons: %w", err)
	}

	contribs, err := c.findContribs("phase2")
	if err != nil {
		return err
	}
	if len(contribs) < 2 {
		return fmt.Errorf("%w: need the init file and at least one phase 2 contribution", ErrNoContributions)
	}

	phases := make([]*mpcsetup.Phase2, len(contribs)-1)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase2)
		if err := loadObject(path, phases[i]); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	pk, vk, err := mpcsetup.VerifyPhase2(r1cs, &commons, beacon, phases...)
	if err != nil {
		return fmt.Errorf("phase 2 verification failed: %w", err)
	}

	if err := ExportKeys(pk, vk, outputDir, circuitName); err != nil {
		return err
	}
	logger.Info().Int("contributions", len(phases)).Msg("ceremony complete")
	return nil
}

func (c *Ceremony) srsPath() string {
	return filepath.Join(c.Dir, "srs_commons.bin")
}

// findContribs returns the sorted paths matching <Dir>/<prefix>_NNNN.bin.
func (c *Ceremony) findContribs(prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.Dir, prefix+"_????.bin"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (c *Ceremony) latestContrib(prefix string) (string, error) {
	contribs, err := c.findContribs(prefix)
	if err != nil {
		return "", err
	}
	if len(contribs) == 0 {
		return "", fmt.Errorf("%w: no %s files in %s", ErrNoContributions, prefix, c.Dir)
	}
	return contribs[len(contribs)-1], nil
}

func (c *Ceremony) nextContribPath(prefix string) (string, error) {
	contribs, err := c.findContribs(prefix)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Dir, fmt.Sprintf("%s_%04d.bin", prefix, len(contribs))), nil
}

func parseBeacon(hexStr string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBeacon, err)
	}
	if len(b) < minBeaconBytes {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidBeacon, minBeaconBytes, len(b))
	}
	return b, nil
}
