// Command zkproof generates and verifies compliance proofs from JSON files.
//
//	zkproof generate --input input.json [--proof-system groth16] [--out proof.json]
//	zkproof verify proof.json
//	zkproof batch --input inputs.json [--out batch.json]
//	zkproof verify-batch batch.json
//	zkproof compose --parent parent.json --child child.json... [--out composed.json]
//	zkproof verify-composition composed.json
//
// Every file argument accepts "-" for stdin.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := newRootCmd(log).Execute(); err != nil {
		log.Error().Err(err).Msg("zkproof failed")
		os.Exit(1)
	}
}
