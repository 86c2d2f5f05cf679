package audit

import "github.com/nobulex/compliance-zkproof/config"

const (
	MaxEntries = config.MaxCircuitEntries // audit entries absorbed per proof

	CircuitName      = "audit"       // key file prefix for the Groth16 keys
	PlonkCircuitName = "audit_plonk" // key file prefix for the PLONK keys
)
