package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

func ballotKey(electionID types.ElectionID, id types.HexBytes) []byte {
	return append(electionID.Marshal(), id...)
}

func countKey(electionID types.ElectionID, positionID uint64) []byte {
	return binary.BigEndian.AppendUint64(electionID.Marshal(), positionID)
}

// PushBallots appends the ballots of one voter submission and bumps the
// accepted count of their positions, in a single transaction. The election
// must exist and be open; a ballot ID already stored fails the whole
// submission with ErrDuplicateBallot.
func (s *Storage) PushBallots(electionID types.ElectionID, ballots []*ballot.EncryptedBallot) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	e, err := s.Election(electionID)
	if err != nil {
		return err
	}
	if e.Closed {
		return fmt.Errorf("%w: %s", ErrElectionClosed, electionID)
	}
	counts := make(map[uint64]uint64)
	seen := make(map[string]bool, len(ballots))
	for _, b := range ballots {
		if b.ElectionID != electionID {
			return fmt.Errorf("ballot %s belongs to election %s", b.ID, b.ElectionID)
		}
		if e.Position(b.PositionID) == nil {
			return fmt.Errorf("ballot %s: unknown position %d", b.ID, b.PositionID)
		}
		key := ballotKey(electionID, b.ID)
		exists, err := s.has(ballotPrefix, key)
		if err != nil {
			return err
		}
		if exists || seen[string(key)] {
			return fmt.Errorf("%w: %s", ErrDuplicateBallot, b.ID)
		}
		seen[string(key)] = true
		counts[b.PositionID]++
	}

	tx := s.db.WriteTx()
	if err := s.writeBallots(tx, electionID, ballots, counts); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

func (s *Storage) writeBallots(tx db.WriteTx, electionID types.ElectionID, ballots []*ballot.EncryptedBallot,
	counts map[uint64]uint64,
) error {
	ballotTx := prefixeddb.NewPrefixedWriteTx(tx, ballotPrefix)
	for _, b := range ballots {
		if err := setIn(ballotTx, ballotKey(electionID, b.ID), b); err != nil {
			return fmt.Errorf("store ballot %s: %w", b.ID, err)
		}
	}
	countTx := prefixeddb.NewPrefixedWriteTx(tx, countPrefix)
	for position, n := range counts {
		current, err := s.count(electionID, position)
		if err != nil {
			return err
		}
		if err := countTx.Set(countKey(electionID, position),
			binary.BigEndian.AppendUint64(nil, current+n)); err != nil {
			return err
		}
	}
	return nil
}

// Ballots returns the accepted ballots of the election.
func (s *Storage) Ballots(electionID types.ElectionID) ([]*ballot.EncryptedBallot, error) {
	var list []*ballot.EncryptedBallot
	var decodeErr error
	err := prefixeddb.NewPrefixedReader(s.db, ballotPrefix).Iterate(electionID.Marshal(), func(_, v []byte) bool {
		b := &ballot.EncryptedBallot{}
		if err := decodeArtifact(v, b); err != nil {
			decodeErr = fmt.Errorf("decode ballot: %w", err)
			return false
		}
		list = append(list, b)
		return true
	})
	if err != nil {
		return nil, err
	}
	return list, decodeErr
}

// Ballot returns one stored ballot, or ErrNotFound.
func (s *Storage) Ballot(electionID types.ElectionID, id types.HexBytes) (*ballot.EncryptedBallot, error) {
	b := &ballot.EncryptedBallot{}
	if err := s.getArtifact(ballotPrefix, ballotKey(electionID, id), b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Storage) count(electionID types.ElectionID, positionID uint64) (uint64, error) {
	data, err := prefixeddb.NewPrefixedReader(s.db, countPrefix).Get(countKey(electionID, positionID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed ballot count for position %d", positionID)
	}
	return binary.BigEndian.Uint64(data), nil
}

// AcceptedBallots returns the number of ballots accepted for the position.
// Storage is the Counter of the tally orchestrator.
func (s *Storage) AcceptedBallots(electionID types.ElectionID, positionID uint64) (int, error) {
	n, err := s.count(electionID, positionID)
	return int(n), err
}
