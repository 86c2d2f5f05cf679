// Package snark simulates a Groth16-shaped succinct proof with the
// permutation hash.
//
// The proof has the familiar shape (three elements A, B, C plus a hash of
// the verifying key) and the verifier checks a relation modelled on
// e(A,B) = e(α,β)·e(L,γ)·e(C,δ). There is no elliptic curve, no pairing and
// no trusted setup: the "setup" is five labelled domain constants, and the
// relation is a hash equation. A prover able to invert the hash could forge
// proofs, and nothing here is zero-knowledge. Treat it as a structural
// stand-in for a real pairing-based system.
//
// Verify recomputes C from the public inputs and compares it with the
// proof's C, then evaluates the pairing relation for both values. Because
// the pairing side is a hash of C with every other term fixed, it fails
// exactly when the C comparison fails (barring a hash collision) and adds
// no independent soundness. It is kept so a tampered C reports both
// ErrCMismatch and ErrPairingFailed, mirroring a real verifier's output.
//
// Proving is a one-shot pipeline:
//
//	c := snark.NewCircuit()          // or snark.BuildCircuit(entryFields)
//	c.AddConstraint(acc, entry)      // repeated, advances the accumulator
//	w, _ := c.GenerateWitness(cf)    // finalizes c
//	p, _ := snark.Prove(w, publicInputs)
//	errs := snark.Verify(p, publicInputs, cf, sf)
package snark
