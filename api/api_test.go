package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/api/client"
	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/testutil"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/service"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
)

func newTestServer(c *qt.C) (*httptest.Server, *client.HTTPclient) {
	store := storage.New(memdb.New())
	c.Cleanup(store.Close)
	es := service.NewElections(store, testutil.BallotKeys(c), service.ElectionsConfig{})
	srv := httptest.NewServer(api.NewHandler(es))
	c.Cleanup(srv.Close)
	cli, err := client.New(srv.URL)
	c.Assert(err, qt.IsNil)
	cli.SetRetries(1)
	return srv, cli
}

func apiCode(c *qt.C, err error) int {
	c.Helper()
	apiErr, ok := err.(*client.Error)
	c.Assert(ok, qt.IsTrue, qt.Commentf("unexpected error %v", err))
	return apiErr.Code
}

var testPositions = []*ballot.Position{
	{ID: 1, Candidates: []uint64{100, 200}},
	{ID: 2, Candidates: []uint64{300, 400}},
}

func TestTallyOverHTTP(t *testing.T) {
	c := qt.New(t)
	_, cli := newTestServer(c)

	created, err := cli.CreateElection(&api.NewElection{
		ID:           42,
		Scheme:       homomorphic.SchemeElGamal,
		Participants: 5,
		Threshold:    3,
		Positions:    testPositions,
		Authorities:  []string{"a", "b", "c", "d", "e"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(created.Shares, qt.HasLen, 5)
	c.Assert(created.Election.ID().String(), qt.Equals, "42")

	e, err := cli.Election(42)
	c.Assert(err, qt.IsNil)
	c.Assert(e.Config.PublicKey.Equal(created.Election.Config.PublicKey), qt.IsTrue)
	c.Assert(e.Positions, qt.DeepEquals, testPositions)

	// three votes for 100 and two for 200; position 2 gets one vote
	for i, candidate := range []uint64{100, 100, 100, 200, 200} {
		selections := []ballot.Selection{{PositionID: 1, CandidateID: candidate}}
		if i == 0 {
			selections = append(selections, ballot.Selection{PositionID: 2, CandidateID: 400})
		}
		ballots, err := cli.Prove(42, testutil.VoterSecret(c), selections)
		c.Assert(err, qt.IsNil)
		ids, err := cli.Cast(42, ballots)
		c.Assert(err, qt.IsNil)
		c.Assert(ids, qt.HasLen, len(selections))
	}

	_, err = cli.StartTally(42)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrElectionOpen.Code)
	c.Assert(cli.Close(42), qt.IsNil)

	status, err := cli.StartTally(42)
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateCollectingShares)
	c.Assert(status.Threshold, qt.Equals, 3)

	// below the threshold nothing is decrypted
	status, err = cli.SubmitShares(42, created.Shares[0], created.Shares[3])
	c.Assert(err, qt.IsNil)
	c.Assert(status.Collected, qt.Equals, 2)
	c.Assert(status.State, qt.Equals, orchestrator.StateCollectingShares)
	_, err = cli.Results(42)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrResultsNotPublished.Code)

	_, err = cli.SubmitShares(42, "not-a-share")
	c.Assert(apiCode(c, err), qt.Equals, api.ErrInvalidShareFormat.Code)

	status, err = cli.SubmitShares(42, created.Shares[4])
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateDone)

	results, err := cli.Results(42)
	c.Assert(err, qt.IsNil)
	c.Assert(results.Summary, qt.DeepEquals, orchestrator.Summary{Verified: true, VoteCountMatch: true, TotalDecrypted: 6})
	c.Assert(results.Results, qt.DeepEquals, []orchestrator.DecryptedResult{
		{PositionID: 1, CandidateID: 100, VoteCount: 3},
		{PositionID: 1, CandidateID: 200, VoteCount: 2},
		{PositionID: 2, CandidateID: 300, VoteCount: 0},
		{PositionID: 2, CandidateID: 400, VoteCount: 1},
	})
}

func TestPartialsOverHTTP(t *testing.T) {
	c := qt.New(t)
	_, cli := newTestServer(c)

	created, err := cli.CreateElection(&api.NewElection{
		ID:           9,
		Participants: 3,
		Threshold:    2,
		Positions:    testPositions[:1],
	})
	c.Assert(err, qt.IsNil)
	ballots, err := cli.Prove(9, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 200}})
	c.Assert(err, qt.IsNil)
	_, err = cli.Cast(9, ballots)
	c.Assert(err, qt.IsNil)
	c.Assert(cli.Close(9), qt.IsNil)
	_, err = cli.StartTally(9)
	c.Assert(err, qt.IsNil)

	targets, err := cli.TallyTargets(9)
	c.Assert(err, qt.IsNil)
	c.Assert(targets, qt.HasLen, 3)

	var status *orchestrator.Status
	for _, line := range created.Shares[:2] {
		share, err := threshold.ParseShare(line)
		c.Assert(err, qt.IsNil)
		set, err := orchestrator.NewPartialSet(created.Election.Config, share, targets)
		c.Assert(err, qt.IsNil)
		status, err = cli.SubmitPartials(9, set)
		c.Assert(err, qt.IsNil)
	}
	c.Assert(status.State, qt.Equals, orchestrator.StateDone)

	results, err := cli.Results(9)
	c.Assert(err, qt.IsNil)
	c.Assert(results.Results, qt.DeepEquals, []orchestrator.DecryptedResult{
		{PositionID: 1, CandidateID: 100, VoteCount: 0},
		{PositionID: 1, CandidateID: 200, VoteCount: 1},
	})
}

func TestRejections(t *testing.T) {
	c := qt.New(t)
	srv, cli := newTestServer(c)

	_, err := cli.Election(1)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrElectionNotFound.Code)

	data, status, err := cli.Request(http.MethodGet, "", nil, "elections", "not-a-number")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)
	c.Assert(string(data), qt.Contains, "40006")

	_, status, err = cli.Request(http.MethodPost, "application/json", []byte("{"), api.ElectionsEndpoint)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	_, err = cli.CreateElection(&api.NewElection{ID: 1, Participants: 3, Threshold: 2})
	c.Assert(apiCode(c, err), qt.Equals, api.ErrMalformedBody.Code)

	_, err = cli.CreateElection(&api.NewElection{ID: 1, Participants: 3, Threshold: 4, Positions: testPositions})
	c.Assert(apiCode(c, err), qt.Equals, api.ErrInvalidThreshold.Code)

	_, err = cli.CreateElection(&api.NewElection{ID: 1, Participants: 3, Threshold: 2, Positions: testPositions})
	c.Assert(err, qt.IsNil)
	_, err = cli.CreateElection(&api.NewElection{ID: 1, Participants: 3, Threshold: 2, Positions: testPositions})
	c.Assert(apiCode(c, err), qt.Equals, api.ErrElectionExists.Code)

	_, err = cli.Prove(1, testutil.VoterSecret(c), []ballot.Selection{
		{PositionID: 2, CandidateID: 300},
		{PositionID: 2, CandidateID: 400},
	})
	c.Assert(apiCode(c, err), qt.Equals, api.ErrMultipleSelections.Code)

	ballots, err := cli.Prove(1, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 2, CandidateID: 300}})
	c.Assert(err, qt.IsNil)
	ballots[0].Proof[10] ^= 1
	_, err = cli.Cast(1, ballots)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrProofVerificationFailed.Code)

	_, err = cli.TallyStatus(1)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrTallyNotStarted.Code)

	c.Assert(cli.Close(1), qt.IsNil)
	_, err = cli.StartTally(1)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrEmptyTallySet.Code)

	resp, err := http.Get(srv.URL + api.PingEndpoint)
	c.Assert(err, qt.IsNil)
	resp.Body.Close()
	c.Assert(resp.Header.Get(api.RequestIDHeader), qt.Not(qt.Equals), "")
}

func TestAbortOverHTTP(t *testing.T) {
	c := qt.New(t)
	_, cli := newTestServer(c)

	created, err := cli.CreateElection(&api.NewElection{ID: 5, Participants: 2, Threshold: 2, Positions: testPositions[1:]})
	c.Assert(err, qt.IsNil)
	ballots, err := cli.Prove(5, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 2, CandidateID: 300}})
	c.Assert(err, qt.IsNil)
	_, err = cli.Cast(5, ballots)
	c.Assert(err, qt.IsNil)
	c.Assert(cli.Close(5), qt.IsNil)
	_, err = cli.StartTally(5)
	c.Assert(err, qt.IsNil)
	_, err = cli.SubmitShares(5, created.Shares[0])
	c.Assert(err, qt.IsNil)

	c.Assert(cli.AbortTally(5), qt.IsNil)
	_, err = cli.TallyStatus(5)
	c.Assert(apiCode(c, err), qt.Equals, api.ErrTallyNotStarted.Code)
	c.Assert(apiCode(c, cli.AbortTally(5)), qt.Equals, api.ErrTallyNotStarted.Code)
}
