// Package tally combines encrypted ballots homomorphically, per position and
// per candidate, without decrypting any of them.
package tally

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// CandidateTally is the encrypted count of one candidate.
type CandidateTally struct {
	CandidateID uint64                  `json:"candidateId" cbor:"0,keyasint"`
	Ballots     int                     `json:"ballots" cbor:"1,keyasint"`
	Ciphertext  *homomorphic.Ciphertext `json:"ciphertext" cbor:"2,keyasint"`
}

// AggregateTally is the encrypted outcome of one position. Total combines
// every ballot of the position, Candidates the ballots of each candidate in
// roster order.
type AggregateTally struct {
	PositionID uint64                  `json:"positionId" cbor:"0,keyasint"`
	Ballots    int                     `json:"ballots" cbor:"1,keyasint"`
	Total      *homomorphic.Ciphertext `json:"total" cbor:"2,keyasint"`
	Candidates []*CandidateTally       `json:"candidates" cbor:"3,keyasint"`
}

// Aggregate homomorphically combines the ciphertexts. The result does not
// depend on their order. An empty input fails with types.ErrEmptyTallySet.
func Aggregate(pk *homomorphic.PublicKey, ciphertexts []*homomorphic.Ciphertext) (*homomorphic.Ciphertext, error) {
	if len(ciphertexts) == 0 {
		return nil, types.ErrEmptyTallySet
	}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	acc := ciphertexts[0]
	if err := pk.ValidateCiphertext(acc); err != nil {
		return nil, fmt.Errorf("ciphertext 0: %w", err)
	}
	for i, ct := range ciphertexts[1:] {
		next, err := pk.Add(acc, ct)
		if err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i+1, err)
		}
		acc = next
	}
	return acc, nil
}

// AggregateOrZero is Aggregate, returning the encryption of zero for an
// empty input. It is used for positions of a closed election that received
// no ballots.
func AggregateOrZero(pk *homomorphic.PublicKey, ciphertexts []*homomorphic.Ciphertext) (*homomorphic.Ciphertext, error) {
	if len(ciphertexts) == 0 {
		if err := pk.Validate(); err != nil {
			return nil, err
		}
		return pk.Zero(), nil
	}
	return Aggregate(pk, ciphertexts)
}

// TallyPosition aggregates the ballots of one position. Ballots of other
// positions or for candidates off the roster are rejected.
func TallyPosition(pk *homomorphic.PublicKey, position *ballot.Position, ballots []*ballot.EncryptedBallot) (*AggregateTally, error) {
	byCandidate := make(map[uint64][]*homomorphic.Ciphertext, len(position.Candidates))
	all := make([]*homomorphic.Ciphertext, 0, len(ballots))
	for _, b := range ballots {
		if b.PositionID != position.ID {
			return nil, fmt.Errorf("ballot %s belongs to position %d, not %d", b.ID, b.PositionID, position.ID)
		}
		if !position.HasCandidate(b.CandidateID) {
			return nil, fmt.Errorf("ballot %s: candidate %d is not on the roster of position %d",
				b.ID, b.CandidateID, position.ID)
		}
		byCandidate[b.CandidateID] = append(byCandidate[b.CandidateID], b.Ciphertext)
		all = append(all, b.Ciphertext)
	}
	total, err := AggregateOrZero(pk, all)
	if err != nil {
		return nil, fmt.Errorf("position %d: %w", position.ID, err)
	}
	at := &AggregateTally{
		PositionID: position.ID,
		Ballots:    len(all),
		Total:      total,
		Candidates: make([]*CandidateTally, 0, len(position.Candidates)),
	}
	for _, id := range position.Candidates {
		ct, err := AggregateOrZero(pk, byCandidate[id])
		if err != nil {
			return nil, fmt.Errorf("position %d candidate %d: %w", position.ID, id, err)
		}
		at.Candidates = append(at.Candidates, &CandidateTally{
			CandidateID: id,
			Ballots:     len(byCandidate[id]),
			Ciphertext:  ct,
		})
	}
	return at, nil
}

// TallyElection aggregates every position in parallel. It fails with
// types.ErrEmptyTallySet when no position received any ballot. The result
// is ordered by position ID.
func TallyElection(ctx context.Context, pk *homomorphic.PublicKey, positions []*ballot.Position,
	ballots []*ballot.EncryptedBallot,
) ([]*AggregateTally, error) {
	if len(ballots) == 0 {
		return nil, types.ErrEmptyTallySet
	}
	byPosition := make(map[uint64][]*ballot.EncryptedBallot, len(positions))
	known := make(map[uint64]bool, len(positions))
	for _, p := range positions {
		known[p.ID] = true
	}
	for _, b := range ballots {
		if !known[b.PositionID] {
			return nil, fmt.Errorf("ballot %s: unknown position %d", b.ID, b.PositionID)
		}
		byPosition[b.PositionID] = append(byPosition[b.PositionID], b)
	}

	results := make([]*AggregateTally, len(positions))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			at, err := TallyPosition(pk, p, byPosition[p.ID])
			if err != nil {
				return err
			}
			results[i] = at
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].PositionID < results[j].PositionID })
	log.Debugw("election tallied", "positions", len(results), "ballots", len(ballots))
	return results, nil
}
