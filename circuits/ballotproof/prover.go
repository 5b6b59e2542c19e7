package ballotproof

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Prove generates a validity proof for the witness. It returns the
// serialized proof and the public signals. Any mismatch between the witness
// and the circuit wraps types.ErrProofGenerationFailed.
func Prove(keys *Keys, w *Witness) (types.HexBytes, PublicSignals, error) {
	if keys == nil || !keys.CanProve() {
		return nil, nil, fmt.Errorf("%w: proving key not loaded", types.ErrProofGenerationFailed)
	}
	assignment, err := w.assignment()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", types.ErrProofGenerationFailed, err)
	}
	fullWitness, err := frontend.NewWitness(assignment, Curve.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create witness: %v", types.ErrProofGenerationFailed, err)
	}
	proof, err := groth16.Prove(keys.CCS, keys.ProvingKey, fullWitness)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", types.ErrProofGenerationFailed, err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("%w: encode proof: %v", types.ErrProofGenerationFailed, err)
	}
	commitment, ok := assignment.Commitment.(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unexpected commitment type %T", types.ErrProofGenerationFailed, assignment.Commitment)
	}
	signals, err := NewPublicSignals(w.PositionID, w.CandidateID, w.Nonce, commitment, w.Candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", types.ErrProofGenerationFailed, err)
	}
	return buf.Bytes(), signals, nil
}
