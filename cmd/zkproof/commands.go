package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nobulex/compliance-zkproof/pkg/proof"
)

var errVerificationFailed = errors.New("verification failed")

type rootOptions struct {
	log     zerolog.Logger
	verbose bool
}

func newRootCmd(log zerolog.Logger) *cobra.Command {
	opts := &rootOptions{log: log}

	root := &cobra.Command{
		Use:           "zkproof",
		Short:         "Generate and verify compliance proofs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			opts.log = opts.log.Level(level)
			proof.SetLogger(opts.log)
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newGenerateCmd(opts),
		newVerifyCmd(opts),
		newBatchCmd(opts),
		newVerifyBatchCmd(opts),
		newComposeCmd(opts),
		newVerifyCompositionCmd(opts),
	)
	return root
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var input, out, system string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a compliance proof from a JSON input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in proof.Input
			if err := readJSON(cmd, input, &in); err != nil {
				return err
			}
			if system != "" {
				in.ProofSystem = proof.ProofSystem(system)
			}
			p, err := proof.Generate(in)
			if err != nil {
				return err
			}
			opts.log.Info().
				Str("covenant_id", p.CovenantID).
				Str("proof_system", string(p.ProofSystem)).
				Int("entry_count", p.EntryCount).
				Msg("proof generated")
			return writeJSON(cmd, out, p)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "input JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&system, "proof-system", "", "override the input's proof system (poseidon_hash, groth16)")
	return cmd
}

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <proof.json>",
		Short: "Verify a compliance proof envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(cmd, args[0])
			if err != nil {
				return err
			}
			return report(cmd, opts, proof.VerifyJSON(data))
		},
	}
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var input, out string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate a batch of proofs from a JSON array of inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var inputs []proof.Input
			if err := readJSON(cmd, input, &inputs); err != nil {
				return err
			}
			b, err := proof.GenerateBatch(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			opts.log.Info().
				Int("proofs", len(b.Proofs)).
				Int("entry_count", b.EntryCount).
				Str("batch_commitment", b.BatchCommitment).
				Msg("batch generated")
			return writeJSON(cmd, out, b)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON array of inputs")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newVerifyBatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-batch <batch.json>",
		Short: "Verify a proof batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b proof.BatchProofResult
			if err := readJSON(cmd, args[0], &b); err != nil {
				return err
			}
			return report(cmd, opts, proof.VerifyBatch(&b))
		},
	}
}

func newComposeCmd(opts *rootOptions) *cobra.Command {
	var parentPath, out string
	var childPaths []string
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a parent proof with its children",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var parent proof.ComplianceProof
			if err := readJSON(cmd, parentPath, &parent); err != nil {
				return err
			}
			children := make([]*proof.ComplianceProof, len(childPaths))
			for i, path := range childPaths {
				children[i] = new(proof.ComplianceProof)
				if err := readJSON(cmd, path, children[i]); err != nil {
					return err
				}
			}
			res, err := proof.Compose(&parent, children)
			if err != nil {
				return err
			}
			opts.log.Info().
				Int("children", len(children)).
				Bool("valid", res.CompositionValid).
				Msg("proofs composed")
			return writeJSON(cmd, out, res)
		},
	}
	cmd.Flags().StringVarP(&parentPath, "parent", "p", "", "parent proof file")
	cmd.Flags().StringArrayVarP(&childPaths, "child", "c", nil, "child proof file (repeatable, in order)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("parent")
	return cmd
}

func newVerifyCompositionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-composition <composed.json>",
		Short: "Verify a composed proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r proof.ComposedProofResult
			if err := readJSON(cmd, args[0], &r); err != nil {
				return err
			}
			return report(cmd, opts, proof.VerifyComposition(&r))
		},
	}
}

// report prints the result and fails the command when it is invalid.
func report(cmd *cobra.Command, opts *rootOptions, res proof.VerificationResult) error {
	if err := writeJSON(cmd, "", res); err != nil {
		return err
	}
	if !res.Valid {
		for _, e := range res.Errors {
			opts.log.Warn().Msg(e)
		}
		return fmt.Errorf("%w: %d error(s)", errVerificationFailed, len(res.Errors))
	}
	opts.log.Info().Msg("valid")
	return nil
}

func readFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func readJSON(cmd *cobra.Command, path string, v any) error {
	data, err := readFile(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
