package storage

import (
	"fmt"
	"time"

	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Election is the stored state of an election.
type Election struct {
	Config    *threshold.ElectionKeyConfig `json:"config" cbor:"0,keyasint"`
	Positions []*ballot.Position           `json:"positions" cbor:"1,keyasint"`
	Closed    bool                         `json:"closed" cbor:"2,keyasint"`
	CreatedAt time.Time                    `json:"createdAt" cbor:"3,keyasint"`
	ClosedAt  time.Time                    `json:"closedAt,omitempty" cbor:"4,keyasint,omitempty"`
}

// ID returns the election identifier.
func (e *Election) ID() types.ElectionID {
	return e.Config.ElectionID
}

// Position returns the position with the given ID, or nil.
func (e *Election) Position(id uint64) *ballot.Position {
	for _, p := range e.Positions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SetElection stores a new election. It fails with ErrElectionExists if the
// ID is taken.
func (s *Storage) SetElection(e *Election) error {
	if e == nil || e.Config == nil {
		return fmt.Errorf("nil election")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	key := e.ID().Marshal()
	exists, err := s.has(electionPrefix, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrElectionExists, e.ID())
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return s.setArtifact(electionPrefix, key, e)
}

// Election returns the stored election, or ErrNotFound.
func (s *Storage) Election(id types.ElectionID) (*Election, error) {
	e := &Election{}
	if err := s.getArtifact(electionPrefix, id.Marshal(), e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListElections returns the IDs of the stored elections.
func (s *Storage) ListElections() ([]types.ElectionID, error) {
	keys, err := s.listKeys(electionPrefix, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ElectionID, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, types.ElectionIDFromBytes(k))
	}
	return ids, nil
}

// CloseElection records the voting-closed signal. Closing twice is a no-op.
func (s *Storage) CloseElection(id types.ElectionID) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	e, err := s.Election(id)
	if err != nil {
		return err
	}
	if e.Closed {
		return nil
	}
	e.Closed = true
	e.ClosedAt = time.Now().UTC()
	return s.setArtifact(electionPrefix, id.Marshal(), e)
}
