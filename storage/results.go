package storage

import (
	"fmt"
	"time"

	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Results are the published outcome of an election.
type Results struct {
	ElectionID  types.ElectionID               `json:"electionId" cbor:"0,keyasint"`
	Results     []orchestrator.DecryptedResult `json:"results" cbor:"1,keyasint"`
	Summary     orchestrator.Summary           `json:"summary" cbor:"2,keyasint"`
	PublishedAt time.Time                      `json:"publishedAt" cbor:"3,keyasint"`
}

// PublishResults stores the verified results of a closed election.
// Storage is the Publisher of the tally orchestrator.
func (s *Storage) PublishResults(electionID types.ElectionID, results []orchestrator.DecryptedResult,
	summary orchestrator.Summary,
) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	e, err := s.Election(electionID)
	if err != nil {
		return err
	}
	if !e.Closed {
		return fmt.Errorf("%w: %s", ErrElectionOpen, electionID)
	}
	return s.setArtifact(resultsPrefix, electionID.Marshal(), &Results{
		ElectionID:  electionID,
		Results:     results,
		Summary:     summary,
		PublishedAt: time.Now().UTC(),
	})
}

// Results returns the published results, or ErrNotFound.
func (s *Storage) Results(electionID types.ElectionID) (*Results, error) {
	r := &Results{}
	if err := s.getArtifact(resultsPrefix, electionID.Marshal(), r); err != nil {
		return nil, err
	}
	return r, nil
}

var (
	_ orchestrator.Counter   = (*Storage)(nil)
	_ orchestrator.Publisher = (*Storage)(nil)
)
