// Package ballotproof implements the Groth16 ballot validity proof over
// BN254. A proof shows, without revealing the voter secret, that the ballot
// selects exactly one candidate of the position roster and that the public
// commitment binds the voter secret to the position and a nonce.
package ballotproof

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// MaxCandidates is the size of the candidate roster in the circuit. Shorter
// rosters are padded with zeros.
const MaxCandidates = 16

// NumPublicSignals is the number of public inputs, in circuit order:
// PositionID, CandidateID, Nonce, Commitment, Candidates[0..MaxCandidates).
const NumPublicSignals = 4 + MaxCandidates

// Curve is the curve the proofs are generated on.
var Curve = ecc.BN254

// Circuit is the ballot validity circuit.
type Circuit struct {
	PositionID  frontend.Variable                `gnark:",public"`
	CandidateID frontend.Variable                `gnark:",public"`
	Nonce       frontend.Variable                `gnark:",public"`
	Commitment  frontend.Variable                `gnark:",public"`
	Candidates  [MaxCandidates]frontend.Variable `gnark:",public"`

	VoterSecret frontend.Variable
	Selection   [MaxCandidates]frontend.Variable
}

// Define declares the circuit constraints:
//   - every selection bit is boolean and exactly one of them is set
//   - the selected roster entry is CandidateID, which is not zero
//   - VoterSecret is not zero
//   - Commitment = MiMC(VoterSecret, PositionID, Nonce)
func (c *Circuit) Define(api frontend.API) error {
	selected := frontend.Variable(0)
	chosen := frontend.Variable(0)
	for i := range c.Selection {
		api.AssertIsBoolean(c.Selection[i])
		selected = api.Add(selected, c.Selection[i])
		chosen = api.Add(chosen, api.Mul(c.Selection[i], c.Candidates[i]))
	}
	api.AssertIsEqual(selected, 1)
	api.AssertIsEqual(chosen, c.CandidateID)
	api.AssertIsDifferent(c.CandidateID, 0)
	api.AssertIsDifferent(c.VoterSecret, 0)

	hFn, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hFn.Write(c.VoterSecret, c.PositionID, c.Nonce)
	api.AssertIsEqual(hFn.Sum(), c.Commitment)
	return nil
}
