// Package ballot turns a voter's selections into encrypted, provably valid
// ballots and checks ballots before they are accepted for tallying.
package ballot

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/hash/poseidon"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Selection is the choice of one candidate for one position.
type Selection struct {
	PositionID  uint64 `json:"positionId"`
	CandidateID uint64 `json:"candidateId"`
}

// Position is a contested position and its candidate roster.
type Position struct {
	ID         uint64   `json:"id" cbor:"0,keyasint"`
	Candidates []uint64 `json:"candidates" cbor:"1,keyasint"`
}

// HasCandidate reports whether the candidate is on the roster.
func (p *Position) HasCandidate(candidateID uint64) bool {
	for _, c := range p.Candidates {
		if c == candidateID {
			return true
		}
	}
	return false
}

// Validate checks that the roster fits the validity circuit: between one
// and ballotproof.MaxCandidates distinct, non-zero candidate IDs.
func (p *Position) Validate() error {
	if len(p.Candidates) == 0 || len(p.Candidates) > ballotproof.MaxCandidates {
		return fmt.Errorf("position %d: roster size %d out of range 1..%d",
			p.ID, len(p.Candidates), ballotproof.MaxCandidates)
	}
	seen := make(map[uint64]bool, len(p.Candidates))
	for _, c := range p.Candidates {
		if c == 0 {
			return fmt.Errorf("position %d: candidate id 0 is reserved", p.ID)
		}
		if seen[c] {
			return fmt.Errorf("position %d: duplicate candidate %d", p.ID, c)
		}
		seen[c] = true
	}
	return nil
}

func (p *Position) roster() []*big.Int {
	roster := make([]*big.Int, len(p.Candidates))
	for i, c := range p.Candidates {
		roster[i] = new(big.Int).SetUint64(c)
	}
	return roster
}

// ValidateVoteRules returns false iff two selections share a position.
func ValidateVoteRules(selections []Selection) bool {
	return CheckVoteRules(selections) == nil
}

// CheckVoteRules is ValidateVoteRules returning
// types.ErrMultipleSelectionsForPosition with the offending position.
func CheckVoteRules(selections []Selection) error {
	seen := make(map[uint64]bool, len(selections))
	for _, s := range selections {
		if seen[s.PositionID] {
			return fmt.Errorf("%w: position %d", types.ErrMultipleSelectionsForPosition, s.PositionID)
		}
		seen[s.PositionID] = true
	}
	return nil
}

// EncryptVote encrypts the integer 1 under pk with fresh randomness. The
// candidate identity travels in clear next to the ciphertext. A malformed
// key fails with types.ErrInvalidPublicKey.
func EncryptVote(pk *homomorphic.PublicKey) (*homomorphic.Ciphertext, error) {
	if pk == nil {
		return nil, fmt.Errorf("%w: nil key", types.ErrInvalidPublicKey)
	}
	return pk.Encrypt(big.NewInt(1))
}

// EncryptVoteWithProof is EncryptVote returning as well the proof that the
// ciphertext holds 1.
func EncryptVoteWithProof(pk *homomorphic.PublicKey) (*homomorphic.Ciphertext, *homomorphic.EncryptionProof, error) {
	if pk == nil {
		return nil, nil, fmt.Errorf("%w: nil key", types.ErrInvalidPublicKey)
	}
	return pk.EncryptWithProof(big.NewInt(1))
}

// EncryptedBallot is a single encrypted vote for one position together with
// its validity proofs. The selection is proven either by a gnark Proof or by
// a snarkjs CircomProof; EncryptionProof shows the ciphertext holds 1.
type EncryptedBallot struct {
	ID              types.HexBytes               `json:"id" cbor:"0,keyasint"`
	ElectionID      types.ElectionID             `json:"electionId" cbor:"1,keyasint"`
	PositionID      uint64                       `json:"positionId" cbor:"2,keyasint"`
	CandidateID     uint64                       `json:"candidateId" cbor:"3,keyasint"`
	Ciphertext      *homomorphic.Ciphertext      `json:"ciphertext" cbor:"4,keyasint"`
	Proof           types.HexBytes               `json:"proof,omitempty" cbor:"5,keyasint"`
	PublicSignals   ballotproof.PublicSignals    `json:"publicSignals" cbor:"6,keyasint"`
	EncryptionProof *homomorphic.EncryptionProof `json:"encryptionProof" cbor:"7,keyasint"`
	CircomProof     json.RawMessage              `json:"circomProof,omitempty" cbor:"8,keyasint,omitempty"`
}

// ID derives the ballot identifier: the Poseidon hash of the election, the
// position and the voter commitment, as 32 big-endian bytes. A voter
// reusing the same commitment for a position gets the same ID.
func ID(electionID types.ElectionID, positionID uint64, commitment *big.Int) (types.HexBytes, error) {
	if commitment == nil {
		return nil, fmt.Errorf("nil commitment")
	}
	h, err := poseidon.Hash(
		new(big.Int).SetUint64(uint64(electionID)),
		new(big.Int).SetUint64(positionID),
		commitment,
	)
	if err != nil {
		return nil, err
	}
	return h.FillBytes(make([]byte, 32)), nil
}
