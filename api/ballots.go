package api

import (
	"net/http"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// prove encrypts and proves the selections of a voter. The returned
// ballots are ready to be cast.
// POST /elections/{electionId}/proofs
func (a *API) prove(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	req := &ProveRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		errorFor(err).Write(w)
		return
	}
	if req.VoterSecret == nil || len(req.Selections) == 0 {
		ErrMalformedBody.With("voter secret and selections are required").Write(w)
		return
	}
	ballots, err := a.elections.Prove(r.Context(), id, req.VoterSecret.MathBigInt(), req.Selections)
	if err != nil {
		electionError(err).Write(w)
		return
	}
	httpWriteJSON(w, &Ballots{Ballots: ballots})
}

// castBallots verifies and stores the ballots of a voter. The submission is
// rejected as a whole if any ballot is invalid.
// POST /elections/{electionId}/ballots
func (a *API) castBallots(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	req := &Ballots{}
	if err := decodeJSON(w, r, req); err != nil {
		errorFor(err).Write(w)
		return
	}
	if len(req.Ballots) == 0 {
		ErrMalformedBody.With("no ballots").Write(w)
		return
	}
	if err := a.elections.Cast(id, req.Ballots); err != nil {
		log.Debugw("ballots rejected", "electionId", id.String(), "error", err.Error())
		electionError(err).Write(w)
		return
	}
	resp := &CastResponse{BallotIDs: make([]types.HexBytes, len(req.Ballots))}
	for i, b := range req.Ballots {
		resp.BallotIDs[i] = b.ID
	}
	httpWriteJSON(w, resp)
}
