// Command export writes a proof fixture for a registered circuit. Keys must
// already exist (run `go run ./cmd/compile dev <circuit>` first).
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nobulex/compliance-zkproof/circuits"
	"github.com/nobulex/compliance-zkproof/circuits/audit"
	"github.com/nobulex/compliance-zkproof/pkg/setup"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	setup.SetLogger(log)

	var keysDir, out string
	cmd := &cobra.Command{
		Use:           "export <circuit>",
		Short:         "Generate, verify and export a proof fixture",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := circuits.Lookup(args[0])
			if err != nil {
				return err
			}
			jsonOut, err := audit.ExportProofFixture(keysDir, entry.Backend, log)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, jsonOut, 0o644); err != nil {
				return err
			}
			log.Info().Str("path", out).Msg("fixture written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&keysDir, "keys", "k", ".", "directory containing the keys")
	cmd.Flags().StringVarP(&out, "out", "o", "proof_fixture.json", "fixture output file")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("export failed")
		os.Exit(1)
	}
}
