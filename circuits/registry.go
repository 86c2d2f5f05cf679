// Package circuits lists the gnark circuits that can be set up, proven and
// exported by name.
package circuits

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark/frontend"

	"github.com/nobulex/compliance-zkproof/circuits/audit"
	"github.com/nobulex/compliance-zkproof/pkg/setup"
)

// Entry pairs a circuit constructor with its proof backend.
type Entry struct {
	NewCircuit func() frontend.Circuit
	Backend    setup.Backend
}

// Registry maps circuit names to their entries. The name is also the key
// file prefix.
var Registry = map[string]Entry{
	audit.CircuitName:      {NewCircuit: func() frontend.Circuit { return &audit.AuditCircuit{} }, Backend: setup.Groth16Backend},
	audit.PlonkCircuitName: {NewCircuit: func() frontend.Circuit { return &audit.AuditCircuit{} }, Backend: setup.PlonkBackend},
}

// Lookup returns the entry for name.
func Lookup(name string) (Entry, error) {
	e, ok := Registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown circuit %q (available: %v)", name, Names())
	}
	return e, nil
}

// Names returns the registered circuit names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
