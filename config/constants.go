package config

const (
	// ProofVersion is the envelope version emitted and accepted by the proof façade.
	ProofVersion = "1.0"

	// Proof system tags as they appear on the wire.
	ProofSystemPoseidon = "poseidon_hash"
	ProofSystemGroth16  = "groth16"
	ProofSystemPlonk    = "plonk" // reserved, never generated

	// PublicInputCount is the fixed length of the public input vector:
	// [covenantId, auditCommitment, constraintCommitment, entryCount].
	PublicInputCount = 4

	// TimestampLayout is the UTC millisecond layout used for generatedAt.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// Permutation hash parameters (BN254 scalar field).
const (
	Width         = 3
	Rate          = 2
	FullRounds    = 8
	PartialRounds = 57
	TotalRounds   = FullRounds + PartialRounds

	RoundConstantLabel = "poseidon_rc_"
)

const (
	// HexLength is the length of a canonical field element in hex.
	HexLength = 64

	// MaxCircuitEntries bounds the audit entries the gnark audit circuit can absorb.
	MaxCircuitEntries = 16
)
