package ballot

import (
	"bytes"
	"fmt"
	"math/big"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Caster prepares and checks the ballots of one election. The proof nonce
// of every ballot is the election ID, so a voter secret yields one
// commitment, and thus one ballot ID, per election and position.
type Caster struct {
	electionID types.ElectionID
	pk         *homomorphic.PublicKey
	positions  map[uint64]*Position
	keys       *ballotproof.Keys
}

// NewCaster returns a Caster for the election. The keys only need the
// proving material if the Caster is used to prepare ballots.
func NewCaster(electionID types.ElectionID, pk *homomorphic.PublicKey, positions []*Position, keys *ballotproof.Keys) (*Caster, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil key", types.ErrInvalidPublicKey)
	}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	if keys == nil || (keys.VerifyingKey == nil && len(keys.CircomVerifyingKey) == 0) {
		return nil, fmt.Errorf("ballot verifying key not loaded")
	}
	c := &Caster{
		electionID: electionID,
		pk:         pk,
		positions:  make(map[uint64]*Position, len(positions)),
		keys:       keys,
	}
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.positions[p.ID]; ok {
			return nil, fmt.Errorf("duplicate position %d", p.ID)
		}
		c.positions[p.ID] = p
	}
	return c, nil
}

func (c *Caster) nonce() *big.Int {
	return new(big.Int).SetUint64(uint64(c.electionID))
}

// Prepare builds one encrypted ballot per selection. The vote rules are
// checked before any proof is generated.
func (c *Caster) Prepare(voterSecret *big.Int, selections []Selection) ([]*EncryptedBallot, error) {
	if err := CheckVoteRules(selections); err != nil {
		return nil, err
	}
	ballots := make([]*EncryptedBallot, 0, len(selections))
	for _, s := range selections {
		position, ok := c.positions[s.PositionID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown position %d", types.ErrProofGenerationFailed, s.PositionID)
		}
		w := &ballotproof.Witness{
			VoterSecret: voterSecret,
			PositionID:  new(big.Int).SetUint64(s.PositionID),
			CandidateID: new(big.Int).SetUint64(s.CandidateID),
			Nonce:       c.nonce(),
			Candidates:  position.roster(),
		}
		proof, signals, err := ballotproof.Prove(c.keys, w)
		if err != nil {
			return nil, err
		}
		ct, encProof, err := EncryptVoteWithProof(c.pk)
		if err != nil {
			return nil, err
		}
		id, err := ID(c.electionID, s.PositionID, signals.Commitment())
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, &EncryptedBallot{
			ID:              id,
			ElectionID:      c.electionID,
			PositionID:      s.PositionID,
			CandidateID:     s.CandidateID,
			Ciphertext:      ct,
			Proof:           proof,
			PublicSignals:   signals,
			EncryptionProof: encProof,
		})
	}
	return ballots, nil
}

// Verify checks one ballot: the public signals match the ballot fields and
// the registered roster, the selection proof verifies (gnark, or snarkjs
// when CircomProof is set), the ID derives from the commitment and the
// ciphertext is proven to encrypt 1 under the election key. Every rejection
// wraps types.ErrProofVerificationFailed.
func (c *Caster) Verify(b *EncryptedBallot) error {
	if b == nil {
		return fmt.Errorf("%w: nil ballot", types.ErrProofVerificationFailed)
	}
	if b.ElectionID != c.electionID {
		return fmt.Errorf("%w: ballot for election %s", types.ErrProofVerificationFailed, b.ElectionID)
	}
	position, ok := c.positions[b.PositionID]
	if !ok {
		return fmt.Errorf("%w: unknown position %d", types.ErrProofVerificationFailed, b.PositionID)
	}
	expected, err := ballotproof.NewPublicSignals(
		new(big.Int).SetUint64(b.PositionID),
		new(big.Int).SetUint64(b.CandidateID),
		c.nonce(),
		b.PublicSignals.Commitment(),
		position.roster(),
	)
	if err != nil || b.PublicSignals.Commitment() == nil {
		return fmt.Errorf("%w: malformed public signals", types.ErrProofVerificationFailed)
	}
	for i := range expected {
		if expected[i] != b.PublicSignals[i] {
			return fmt.Errorf("%w: public signal %d does not match the ballot", types.ErrProofVerificationFailed, i)
		}
	}
	if len(b.CircomProof) > 0 {
		if len(b.Proof) > 0 {
			return fmt.Errorf("%w: ballot carries two selection proofs", types.ErrProofVerificationFailed)
		}
		if err := c.keys.VerifyCircomProof(b.PublicSignals, b.CircomProof); err != nil {
			return err
		}
	} else if err := ballotproof.VerifyProof(c.keys.VerifyingKey, b.PublicSignals, b.Proof); err != nil {
		return err
	}
	id, err := ID(c.electionID, b.PositionID, b.PublicSignals.Commitment())
	if err != nil || !bytes.Equal(id, b.ID) {
		return fmt.Errorf("%w: ballot id does not match the commitment", types.ErrProofVerificationFailed)
	}
	if err := c.pk.VerifyEncryption(b.Ciphertext, big.NewInt(1), b.EncryptionProof); err != nil {
		return fmt.Errorf("%w: %v", types.ErrProofVerificationFailed, err)
	}
	return nil
}

// Accept checks a voter submission: at most one ballot per position and a
// valid proof for each of them. Proofs are verified in parallel.
func (c *Caster) Accept(ballots []*EncryptedBallot) error {
	selections := make([]Selection, len(ballots))
	for i, b := range ballots {
		if b == nil {
			return fmt.Errorf("%w: nil ballot", types.ErrProofVerificationFailed)
		}
		selections[i] = Selection{PositionID: b.PositionID, CandidateID: b.CandidateID}
	}
	if err := CheckVoteRules(selections); err != nil {
		return err
	}
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, b := range ballots {
		g.Go(func() error {
			return c.Verify(b)
		})
	}
	if err := g.Wait(); err != nil {
		log.Debugw("ballot submission rejected", "election", c.electionID.String(), "ballots", len(ballots))
		return err
	}
	return nil
}

// Positions returns the positions of the election ordered by ID.
func (c *Caster) Positions() []*Position {
	list := make([]*Position, 0, len(c.positions))
	for _, p := range c.positions {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
