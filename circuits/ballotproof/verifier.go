package ballotproof

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// VerifyProof checks a serialized proof against the public signals. Every
// failure, including malformed inputs, wraps types.ErrProofVerificationFailed.
func VerifyProof(vk groth16.VerifyingKey, signals PublicSignals, proof []byte) error {
	if vk == nil {
		return fmt.Errorf("%w: verifying key not loaded", types.ErrProofVerificationFailed)
	}
	if len(proof) == 0 {
		return fmt.Errorf("%w: empty proof", types.ErrProofVerificationFailed)
	}
	assignment, err := signals.publicAssignment()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	pubWitness, err := frontend.NewWitness(assignment, Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: failed to create public witness: %v", types.ErrProofVerificationFailed, err)
	}
	p := groth16.NewProof(Curve)
	if _, err := p.ReadFrom(bytes.NewReader(proof)); err != nil {
		return fmt.Errorf("%w: malformed proof: %v", types.ErrProofVerificationFailed, err)
	}
	if err := groth16.Verify(p, vk, pubWitness); err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	return nil
}

// Verify reports whether the proof is valid for the public signals.
func Verify(vk groth16.VerifyingKey, signals PublicSignals, proof []byte) bool {
	if err := VerifyProof(vk, signals, proof); err != nil {
		log.Debugw("ballot proof rejected", "error", err.Error())
		return false
	}
	return true
}
