package ballotproof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/arbo"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
)

// Witness holds the prover inputs of a ballot. Candidates is the position
// roster, with at most MaxCandidates distinct non-zero entries.
type Witness struct {
	VoterSecret *big.Int
	PositionID  *big.Int
	CandidateID *big.Int
	Nonce       *big.Int
	Candidates  []*big.Int
}

// RandomFieldElement returns a uniform non-zero element of the BN254 scalar
// field, suitable as voter secret or nonce.
func RandomFieldElement() (*big.Int, error) {
	return arith.RandomNonZero(fr.Modulus())
}

// Commitment returns MiMC(secret, positionID, nonce) over the BN254 scalar
// field, the value the circuit checks against its Commitment input.
func Commitment(secret, positionID, nonce *big.Int) (*big.Int, error) {
	h := mimc.NewMiMC()
	for _, v := range []*big.Int{secret, positionID, nonce} {
		var e fr.Element
		e.SetBigInt(arbo.BigToFF(fr.Modulus(), v))
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, fmt.Errorf("mimc: %w", err)
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// assignment builds the full circuit assignment of w. It fails if the
// candidate is not in the roster or the roster does not fit the circuit.
func (w *Witness) assignment() (*Circuit, error) {
	if w.VoterSecret == nil || w.PositionID == nil || w.CandidateID == nil || w.Nonce == nil {
		return nil, fmt.Errorf("incomplete witness")
	}
	if len(w.Candidates) == 0 || len(w.Candidates) > MaxCandidates {
		return nil, fmt.Errorf("roster size %d out of range 1..%d", len(w.Candidates), MaxCandidates)
	}
	commitment, err := Commitment(w.VoterSecret, w.PositionID, w.Nonce)
	if err != nil {
		return nil, err
	}
	c := &Circuit{
		PositionID:  w.PositionID,
		CandidateID: w.CandidateID,
		Nonce:       w.Nonce,
		Commitment:  commitment,
		VoterSecret: w.VoterSecret,
	}
	found := false
	for i := 0; i < MaxCandidates; i++ {
		c.Candidates[i] = 0
		c.Selection[i] = 0
		if i >= len(w.Candidates) {
			continue
		}
		c.Candidates[i] = w.Candidates[i]
		if !found && w.Candidates[i].Cmp(w.CandidateID) == 0 {
			c.Selection[i] = 1
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("candidate %s is not in the roster", w.CandidateID)
	}
	return c, nil
}

// PublicSignals are the public inputs of a proof as decimal strings, in
// circuit order. The layout matches snarkjs public signals.
type PublicSignals []string

// NewPublicSignals returns the public signals of a ballot.
func NewPublicSignals(positionID, candidateID, nonce, commitment *big.Int, candidates []*big.Int) (PublicSignals, error) {
	if len(candidates) > MaxCandidates {
		return nil, fmt.Errorf("roster size %d exceeds %d", len(candidates), MaxCandidates)
	}
	ps := make(PublicSignals, 0, NumPublicSignals)
	for _, v := range []*big.Int{positionID, candidateID, nonce, commitment} {
		ps = append(ps, v.String())
	}
	for i := 0; i < MaxCandidates; i++ {
		if i < len(candidates) {
			ps = append(ps, candidates[i].String())
		} else {
			ps = append(ps, "0")
		}
	}
	return ps, nil
}

// Values parses the signals as field elements.
func (ps PublicSignals) Values() ([]*big.Int, error) {
	if len(ps) != NumPublicSignals {
		return nil, fmt.Errorf("expected %d public signals, got %d", NumPublicSignals, len(ps))
	}
	values := make([]*big.Int, len(ps))
	for i, s := range ps {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || v.Sign() < 0 || v.Cmp(fr.Modulus()) >= 0 {
			return nil, fmt.Errorf("public signal %d is not a field element: %q", i, s)
		}
		values[i] = v
	}
	return values, nil
}

func (ps PublicSignals) value(i int) *big.Int {
	values, err := ps.Values()
	if err != nil {
		return nil
	}
	return values[i]
}

// PositionID returns the position signal, or nil if the signals are malformed.
func (ps PublicSignals) PositionID() *big.Int { return ps.value(0) }

// CandidateID returns the candidate signal, or nil if the signals are malformed.
func (ps PublicSignals) CandidateID() *big.Int { return ps.value(1) }

// Nonce returns the nonce signal, or nil if the signals are malformed.
func (ps PublicSignals) Nonce() *big.Int { return ps.value(2) }

// Commitment returns the commitment signal, or nil if the signals are malformed.
func (ps PublicSignals) Commitment() *big.Int { return ps.value(3) }

// Candidates returns the padded roster signals.
func (ps PublicSignals) Candidates() []*big.Int {
	values, err := ps.Values()
	if err != nil {
		return nil
	}
	return values[4:]
}

// publicAssignment builds the public part of the circuit assignment.
func (ps PublicSignals) publicAssignment() (*Circuit, error) {
	values, err := ps.Values()
	if err != nil {
		return nil, err
	}
	c := &Circuit{
		PositionID:  values[0],
		CandidateID: values[1],
		Nonce:       values[2],
		Commitment:  values[3],
		VoterSecret: 0,
	}
	for i := 0; i < MaxCandidates; i++ {
		c.Candidates[i] = values[4+i]
		c.Selection[i] = 0
	}
	return c, nil
}

var _ frontend.Circuit = (*Circuit)(nil)
