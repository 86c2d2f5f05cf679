// Package proof generates and verifies compliance proofs: envelopes that
// bind a covenant's audit log and constraint text to short commitments.
//
// Two schemes produce the proof payload. The hash-commitment scheme
// ("poseidon_hash") is a single hash over both commitments and the covenant
// id. The simulated succinct scheme ("groth16") is built on package snark.
// "plonk" is a reserved tag: envelopes carrying it pass the structural
// checks but are never generated.
//
// The package also aggregates proofs into batches and composes a parent
// proof with its children. All operations are pure: the only ambient input
// is the clock used for generatedAt.
package proof

import (
	"errors"
	"fmt"
	"time"

	"github.com/nobulex/compliance-zkproof/config"
	"github.com/nobulex/compliance-zkproof/pkg/crypto"
)

// ProofSystem identifies the scheme that produced an envelope's payload.
type ProofSystem string

const (
	PoseidonHash ProofSystem = config.ProofSystemPoseidon
	Groth16      ProofSystem = config.ProofSystemGroth16
	Plonk        ProofSystem = config.ProofSystemPlonk
)

// Recognized reports whether the tag is one verification accepts.
func (s ProofSystem) Recognized() bool {
	switch s {
	case PoseidonHash, Groth16, Plonk:
		return true
	}
	return false
}

// Sentinel errors returned by Generate, Verify, the batch aggregator and the
// composer. Match them with errors.Is; wrapped errors carry the detail.
var (
	ErrInvalidInput           = errors.New("proof: invalid input")
	ErrUnsupportedProofSystem = errors.New("proof: unsupported proof system")
	ErrMalformedEnvelope      = errors.New("proof: malformed proof envelope")
	ErrEmptyBatch             = errors.New("proof: batch is empty")
	ErrMissingParent          = errors.New("proof: parent proof is required")
)

// ValidationError names the input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("proof: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match every validation failure with ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ComplianceProof is the proof envelope. PublicInputs mirrors
// [CovenantID, AuditLogCommitment, ConstraintCommitment, EntryCount] and
// must stay identical to those fields.
type ComplianceProof struct {
	Version              string      `json:"version"`
	CovenantID           string      `json:"covenantId"`
	AuditLogCommitment   string      `json:"auditLogCommitment"`
	ConstraintCommitment string      `json:"constraintCommitment"`
	Proof                string      `json:"proof"`
	PublicInputs         []string    `json:"publicInputs"`
	ProofSystem          ProofSystem `json:"proofSystem"`
	GeneratedAt          string      `json:"generatedAt"`
	EntryCount           int         `json:"entryCount"`
}

// Input is everything needed to generate one proof.
type Input struct {
	CovenantID   string              `json:"covenantId"`
	Constraints  string              `json:"constraints"`
	AuditEntries []crypto.AuditEntry `json:"auditEntries"`

	// ProofSystem defaults to PoseidonHash.
	ProofSystem ProofSystem `json:"proofSystem,omitempty"`

	// Now overrides the clock used for GeneratedAt.
	Now func() time.Time `json:"-"`
}

func (in *Input) now() time.Time {
	if in.Now != nil {
		return in.Now()
	}
	return time.Now()
}

// VerificationResult lists every discrepancy found. Valid is true only when
// Errors is empty.
type VerificationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) VerificationResult {
	if errs == nil {
		errs = []string{}
	}
	return VerificationResult{Valid: len(errs) == 0, Errors: errs}
}

// FormatTimestamp renders t as the envelope's UTC millisecond timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(config.TimestampLayout)
}

// ParseTimestamp parses a generatedAt value. It must be UTC ("Z" suffix).
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) == 0 || s[len(s)-1] != 'Z' {
		return time.Time{}, fmt.Errorf("timestamp %q is not UTC", s)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t, nil
}
