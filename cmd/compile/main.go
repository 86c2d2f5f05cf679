// Command compile runs the key setup for a registered circuit: a dev setup
// for either backend, or a multi-party Groth16 ceremony.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nobulex/compliance-zkproof/circuits"
	"github.com/nobulex/compliance-zkproof/pkg/setup"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	setup.SetLogger(log)

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("compile failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outDir string
	root := &cobra.Command{
		Use:           "compile",
		Short:         "Compile circuits and produce proving and verifying keys",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&outDir, "out", "o", ".", "directory for the exported keys")

	dev := &cobra.Command{
		Use:   "dev <circuit>",
		Short: "Single-party or unsafe-SRS setup (NOT for production)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := circuits.Lookup(args[0])
			if err != nil {
				return err
			}
			switch entry.Backend {
			case setup.Groth16Backend:
				return setup.DevSetup(entry.NewCircuit(), outDir, args[0])
			case setup.PlonkBackend:
				return setup.PlonkDevSetup(entry.NewCircuit(), outDir, args[0])
			}
			return fmt.Errorf("unknown backend %s", entry.Backend)
		},
	}

	root.AddCommand(dev, newCeremonyCmd(&outDir))
	return root
}

// newCeremonyCmd wires the six ceremony steps. Only Groth16 circuits need
// one; PLONK uses a universal SRS.
func newCeremonyCmd(outDir *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "ceremony",
		Short: "Multi-party Groth16 setup (1-of-N honest)",
		Long: `Ceremony workflow (Groth16 only):
  1. p1-init          Coordinator creates the initial Phase 1 state
  2. p1-contribute    Each participant contributes (repeat N times)
  3. p1-verify        Coordinator verifies all and seals with a public beacon
  4. p2-init          Coordinator initializes Phase 2 with the circuit
  5. p2-contribute    Each participant contributes (repeat M times)
  6. p2-verify        Coordinator verifies all, seals, and exports final keys

The beacon must come from a public randomness source evaluated after the
last contribution.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", setup.DefaultCeremonyDir, "ceremony state directory")

	ceremony := func(name string) (*setup.Ceremony, error) {
		entry, err := circuits.Lookup(name)
		if err != nil {
			return nil, err
		}
		if entry.Backend != setup.Groth16Backend {
			return nil, fmt.Errorf("MPC ceremony is only supported for Groth16 circuits; %q uses PLONK", name)
		}
		return setup.NewCeremony(dir, entry.NewCircuit()), nil
	}

	step := func(use, short string, nargs int, run func(c *setup.Ceremony, args []string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := ceremony(args[0])
				if err != nil {
					return err
				}
				return run(c, args)
			},
		}
	}

	cmd.AddCommand(
		step("p1-init <circuit>", "Initialize Phase 1 (Powers of Tau)", 1,
			func(c *setup.Ceremony, _ []string) error { return c.P1Init() }),
		step("p1-contribute <circuit>", "Add a Phase 1 contribution", 1,
			func(c *setup.Ceremony, _ []string) error { return c.P1Contribute() }),
		step("p1-verify <circuit> <beacon-hex>", "Verify Phase 1 and seal with a random beacon", 2,
			func(c *setup.Ceremony, args []string) error { return c.P1Verify(args[1]) }),
		step("p2-init <circuit>", "Initialize Phase 2 (circuit-specific)", 1,
			func(c *setup.Ceremony, _ []string) error { return c.P2Init() }),
		step("p2-contribute <circuit>", "Add a Phase 2 contribution", 1,
			func(c *setup.Ceremony, _ []string) error { return c.P2Contribute() }),
		step("p2-verify <circuit> <beacon-hex>", "Verify Phase 2, seal and export keys", 2,
			func(c *setup.Ceremony, args []string) error { return c.P2Verify(args[1], *outDir, args[0]) }),
	)
	return cmd
}
