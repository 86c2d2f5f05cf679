package snark

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nobulex/compliance-zkproof/pkg/poseidon"
)

// ErrCircuitFinalized is returned when a circuit is modified or finalized
// after its witness was generated.
var ErrCircuitFinalized = errors.New("snark: circuit already finalized")

// Constraint binds one audit value to the running commitment:
// Output = Hash(Commitment, AuditValue).
type Constraint struct {
	Commitment *big.Int
	AuditValue *big.Int
	Output     *big.Int
}

// Circuit accumulates constraints until GenerateWitness finalizes it.
// After that it is read-only.
type Circuit struct {
	constraints []Constraint
	accumulator *big.Int
	finalized   bool
}

// NewCircuit returns an open circuit with a zero accumulator.
func NewCircuit() *Circuit {
	return &Circuit{accumulator: big.NewInt(0)}
}

// BuildCircuit absorbs every entry field in order, chaining each
// constraint's output into the next constraint's commitment.
func BuildCircuit(entryFields []*big.Int) (*Circuit, error) {
	c := NewCircuit()
	for i, v := range entryFields {
		if _, err := c.AddConstraint(c.Accumulator(), v); err != nil {
			return nil, fmt.Errorf("snark: constraint %d: %w", i, err)
		}
	}
	return c, nil
}

// AddConstraint records (commitment, auditValue, Hash(commitment, auditValue))
// and advances the accumulator to the output.
func (c *Circuit) AddConstraint(commitment, auditValue *big.Int) (*big.Int, error) {
	if c.finalized {
		return nil, ErrCircuitFinalized
	}
	out, err := poseidon.Hash(commitment, auditValue)
	if err != nil {
		return nil, err
	}
	c.constraints = append(c.constraints, Constraint{
		Commitment: new(big.Int).Set(commitment),
		AuditValue: new(big.Int).Set(auditValue),
		Output:     out,
	})
	c.accumulator = out
	return new(big.Int).Set(out), nil
}

// Accumulator returns the output of the last constraint, or 0.
func (c *Circuit) Accumulator() *big.Int {
	return new(big.Int).Set(c.accumulator)
}

// Len returns the number of constraints.
func (c *Circuit) Len() int { return len(c.constraints) }

// Finalized reports whether the witness has been generated.
func (c *Circuit) Finalized() bool { return c.finalized }

// Constraints returns a copy of the recorded constraints.
func (c *Circuit) Constraints() []Constraint {
	out := make([]Constraint, len(c.constraints))
	copy(out, c.constraints)
	return out
}

// Witness is the private assignment derived from a finalized circuit.
type Witness struct {
	Commitments      []*big.Int
	Blindings        []*big.Int
	Signals          []*big.Int
	AccumulatedState *big.Int
}

// ConstraintCount returns the number of constraints the witness covers.
func (w *Witness) ConstraintCount() int { return len(w.Commitments) }

// GenerateWitness finalizes the circuit and derives, per constraint,
// a blinding value Hash(BLINDING, commitment, auditValue, i), the chained
// state Hash(state, output) and a satisfaction signal Hash(output, constraintField).
func (c *Circuit) GenerateWitness(constraintField *big.Int) (*Witness, error) {
	if c.finalized {
		return nil, ErrCircuitFinalized
	}
	k := Constants()

	n := len(c.constraints)
	w := &Witness{
		Commitments:      make([]*big.Int, n),
		Blindings:        make([]*big.Int, n),
		Signals:          make([]*big.Int, n),
		AccumulatedState: big.NewInt(0),
	}
	for i, cons := range c.constraints {
		blinding, err := poseidon.Hash(k.Blinding, cons.Commitment, cons.AuditValue, big.NewInt(int64(i)))
		if err != nil {
			return nil, fmt.Errorf("snark: blinding %d: %w", i, err)
		}
		state, err := poseidon.Hash(w.AccumulatedState, cons.Output)
		if err != nil {
			return nil, fmt.Errorf("snark: state %d: %w", i, err)
		}
		signal, err := poseidon.Hash(cons.Output, constraintField)
		if err != nil {
			return nil, fmt.Errorf("snark: signal %d: %w", i, err)
		}
		w.Commitments[i] = new(big.Int).Set(cons.Commitment)
		w.Blindings[i] = blinding
		w.Signals[i] = signal
		w.AccumulatedState = state
	}

	c.finalized = true
	return w, nil
}
