package api

import (
	"bufio"
	"net/http"
	"strings"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
)

// startTally aggregates the ballots of a closed election and opens its
// decryption session.
// POST /elections/{electionId}/tally
func (a *API) startTally(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	status, err := a.elections.StartTally(r.Context(), id)
	if err != nil {
		electionError(err).Write(w)
		return
	}
	log.Infow("tally started", "electionId", id.String(), "state", string(status.State))
	httpWriteJSON(w, status)
}

// tallyStatus returns the state of the decryption session.
// GET /elections/{electionId}/tally
func (a *API) tallyStatus(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	status, err := a.elections.TallyStatus(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	httpWriteJSON(w, status)
}

// abortTally aborts the decryption session. Collected shares are wiped.
// DELETE /elections/{electionId}/tally
func (a *API) abortTally(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	if err := a.elections.AbortTally(id); err != nil {
		errorFor(err).Write(w)
		return
	}
	log.Infow("tally aborted", "electionId", id.String())
	httpWriteOK(w)
}

// submitShares takes key shares as plain text, one "<index>:<hex>" per
// line. Blank lines are ignored.
// POST /elections/{electionId}/tally/shares
func (a *API) submitShares(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	var lines []string
	scanner := bufio.NewScanner(http.MaxBytesReader(w, r.Body, maxBodySize))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if len(lines) == 0 {
		ErrInvalidShareFormat.With("no shares").Write(w)
		return
	}
	status, err := a.elections.SubmitShares(id, lines)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	log.Infow("shares submitted", "electionId", id.String(), "collected", status.Collected, "state", string(status.State))
	httpWriteJSON(w, status)
}

// tallyTargets lists the aggregates trustees partially decrypt.
// GET /elections/{electionId}/tally/targets
func (a *API) tallyTargets(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	targets, err := a.elections.Targets(id)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	if len(targets) == 0 {
		ErrTallyWrongState.With("no partial decryption targets").Write(w)
		return
	}
	httpWriteJSON(w, &Targets{Targets: targets})
}

// submitPartials takes the partial decryptions of one trustee.
// POST /elections/{electionId}/tally/partials
func (a *API) submitPartials(w http.ResponseWriter, r *http.Request) {
	id, err := electionID(r)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	set := &orchestrator.PartialSet{}
	if err := decodeJSON(w, r, set); err != nil {
		errorFor(err).Write(w)
		return
	}
	status, err := a.elections.SubmitPartials(id, set)
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	log.Infow("partials submitted", "electionId", id.String(), "index", set.Index, "state", string(status.State))
	httpWriteJSON(w, status)
}
