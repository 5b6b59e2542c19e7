package client

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Ping checks that the API is up.
func (c *HTTPclient) Ping() error {
	return c.call(http.MethodGet, api.PingEndpoint, nil, nil)
}

// CreateElection creates an election. The returned shares must be handed
// to the trustees: the server does not keep them.
func (c *HTTPclient) CreateElection(req *api.NewElection) (*api.NewElectionResponse, error) {
	resp := &api.NewElectionResponse{}
	return resp, c.call(http.MethodPost, api.ElectionsEndpoint, req, resp)
}

// Election returns the public info of an election.
func (c *HTTPclient) Election(id types.ElectionID) (*storage.Election, error) {
	e := &storage.Election{}
	return e, c.call(http.MethodGet, electionPath(api.ElectionEndpoint, uint64(id)), nil, e)
}

// Prove asks the server to encrypt and prove the selections of a voter.
func (c *HTTPclient) Prove(id types.ElectionID, voterSecret *big.Int, selections []ballot.Selection) ([]*ballot.EncryptedBallot, error) {
	resp := &api.Ballots{}
	req := &api.ProveRequest{VoterSecret: types.FromBig(voterSecret), Selections: selections}
	if err := c.call(http.MethodPost, electionPath(api.ProofsEndpoint, uint64(id)), req, resp); err != nil {
		return nil, err
	}
	return resp.Ballots, nil
}

// Cast submits the ballots of a voter.
func (c *HTTPclient) Cast(id types.ElectionID, ballots []*ballot.EncryptedBallot) ([]types.HexBytes, error) {
	resp := &api.CastResponse{}
	if err := c.call(http.MethodPost, electionPath(api.BallotsEndpoint, uint64(id)), &api.Ballots{Ballots: ballots}, resp); err != nil {
		return nil, err
	}
	return resp.BallotIDs, nil
}

// Close signals the end of the voting period.
func (c *HTTPclient) Close(id types.ElectionID) error {
	return c.call(http.MethodPost, electionPath(api.CloseEndpoint, uint64(id)), nil, nil)
}

// StartTally opens the decryption session of a closed election.
func (c *HTTPclient) StartTally(id types.ElectionID) (*orchestrator.Status, error) {
	status := &orchestrator.Status{}
	return status, c.call(http.MethodPost, electionPath(api.TallyEndpoint, uint64(id)), nil, status)
}

// TallyStatus returns the state of the decryption session.
func (c *HTTPclient) TallyStatus(id types.ElectionID) (*orchestrator.Status, error) {
	status := &orchestrator.Status{}
	return status, c.call(http.MethodGet, electionPath(api.TallyEndpoint, uint64(id)), nil, status)
}

// AbortTally aborts the decryption session.
func (c *HTTPclient) AbortTally(id types.ElectionID) error {
	return c.call(http.MethodDelete, electionPath(api.TallyEndpoint, uint64(id)), nil, nil)
}

// SubmitShares sends key shares in the "<index>:<hex>" text format.
func (c *HTTPclient) SubmitShares(id types.ElectionID, shares ...string) (*orchestrator.Status, error) {
	body := []byte(strings.Join(shares, "\n") + "\n")
	data, code, err := c.Request(http.MethodPost, "text/plain", body, electionPath(api.TallySharesEndpoint, uint64(id)))
	if err != nil {
		return nil, err
	}
	status := &orchestrator.Status{}
	return status, decode(data, code, status)
}

// TallyTargets returns the aggregates to partially decrypt.
func (c *HTTPclient) TallyTargets(id types.ElectionID) ([]orchestrator.Target, error) {
	resp := &api.Targets{}
	if err := c.call(http.MethodGet, electionPath(api.TallyTargetsEndpoint, uint64(id)), nil, resp); err != nil {
		return nil, err
	}
	return resp.Targets, nil
}

// SubmitPartials sends the partial decryptions of a trustee.
func (c *HTTPclient) SubmitPartials(id types.ElectionID, set *orchestrator.PartialSet) (*orchestrator.Status, error) {
	status := &orchestrator.Status{}
	return status, c.call(http.MethodPost, electionPath(api.TallyPartialsEndpoint, uint64(id)), set, status)
}

// Results returns the published results.
func (c *HTTPclient) Results(id types.ElectionID) (*storage.Results, error) {
	results := &storage.Results{}
	return results, c.call(http.MethodGet, electionPath(api.ResultsEndpoint, uint64(id)), nil, results)
}
