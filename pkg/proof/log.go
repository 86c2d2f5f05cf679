package proof

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger replaces the package logger. Call it during initialization;
// it is not synchronized with running operations.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "proof").Logger()
}
