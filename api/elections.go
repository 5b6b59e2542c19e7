package api

import (
	"fmt"
	"net/http"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
)

// newElection creates a new election and returns its key shares.
// POST /elections
func (a *API) newElection(w http.ResponseWriter, r *http.Request) {
	req := &NewElection{}
	if err := decodeJSON(w, r, req); err != nil {
		errorFor(err).Write(w)
		return
	}
	if err := req.validate(); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	election, shares, err := a.elections.Create(req)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	resp := &NewElectionResponse{Election: election, Shares: make([]string, len(shares))}
	for i, s := range shares {
		resp.Shares[i] = s.String()
	}
	log.Infow("new election",
		"electionId", election.ID().String(),
		"scheme", string(election.Config.Scheme),
		"participants", election.Config.Participants,
		"threshold", election.Config.Threshold,
		"positions", len(election.Positions))
	httpWriteJSON(w, resp)
}

func (req *NewElection) validate() error {
	if req.Scheme != "" && !req.Scheme.Valid() {
		return fmt.Errorf("unknown scheme %q", req.Scheme)
	}
	if len(req.Positions) == 0 {
		return fmt.Errorf("no positions")
	}
	seen := make(map[uint64]bool, len(req.Positions))
	for _, p := range req.Positions {
		if p == nil {
			return fmt.Errorf("nil position")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate position %d", p.ID)
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// election returns the public info of an election.
// GET /elections/{electionId}
func (a *API) election(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	election, err := a.elections.Election(id)
	if err != nil {
		electionError(err).Write(w)
		return
	}
	httpWriteJSON(w, election)
}

// closeElection records the voting-closed signal.
// POST /elections/{electionId}/close
func (a *API) closeElection(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	if err := a.elections.Close(id); err != nil {
		electionError(err).Write(w)
		return
	}
	log.Infow("election closed", "electionId", id.String())
	httpWriteOK(w)
}

// results returns the published results of an election.
// GET /elections/{electionId}/results
func (a *API) results(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	results, err := a.elections.Results(id)
	if err != nil {
		if isNotFound(err) {
			ErrResultsNotPublished.WithErr(err).Write(w)
			return
		}
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, results)
}
