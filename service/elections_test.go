package service

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/testutil"
	"github.com/harudayoo/phoniphaleia-vs-sub000/config"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

func newElectionsForTest(c *qt.C, conf ElectionsConfig) *Elections {
	store := storage.New(memdb.New())
	c.Cleanup(store.Close)
	return NewElections(store, testutil.BallotKeys(c), conf)
}

func newElectionRequest(id types.ElectionID) *api.NewElection {
	return &api.NewElection{
		ID:           id,
		Scheme:       homomorphic.SchemeElGamal,
		Participants: 3,
		Threshold:    2,
		Positions: []*ballot.Position{
			{ID: 1, Candidates: []uint64{10, 11}},
			{ID: 2, Candidates: []uint64{20, 21, 22}},
		},
	}
}

func TestElectionsTally(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{})
	ctx := context.Background()

	e, shares, err := es.Create(newElectionRequest(7))
	c.Assert(err, qt.IsNil)
	c.Assert(shares, qt.HasLen, 3)
	c.Assert(e.Config.Threshold, qt.Equals, 2)

	_, _, err = es.Create(newElectionRequest(7))
	c.Assert(err, qt.ErrorIs, storage.ErrElectionExists)

	votes := [][]ballot.Selection{
		{{PositionID: 1, CandidateID: 10}, {PositionID: 2, CandidateID: 22}},
		{{PositionID: 1, CandidateID: 10}, {PositionID: 2, CandidateID: 20}},
		{{PositionID: 1, CandidateID: 11}},
	}
	var first []*ballot.EncryptedBallot
	for _, selections := range votes {
		ballots, err := es.Prove(ctx, 7, testutil.VoterSecret(c), selections)
		c.Assert(err, qt.IsNil)
		c.Assert(es.Cast(7, ballots), qt.IsNil)
		if first == nil {
			first = ballots
		}
	}

	// a ballot cannot be cast twice
	c.Assert(es.Cast(7, first), qt.ErrorIs, storage.ErrDuplicateBallot)

	_, err = es.StartTally(ctx, 7)
	c.Assert(err, qt.ErrorIs, orchestrator.ErrNotClosed)

	c.Assert(es.Close(7), qt.IsNil)
	late, err := es.Prove(ctx, 7, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 11}})
	c.Assert(err, qt.IsNil)
	c.Assert(es.Cast(7, late), qt.ErrorIs, storage.ErrElectionClosed)

	status, err := es.StartTally(ctx, 7)
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateCollectingShares)

	_, err = es.StartTally(ctx, 7)
	c.Assert(err, qt.ErrorIs, orchestrator.ErrSessionExists)

	status, err = es.SubmitShares(7, []string{shares[2].String()})
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateCollectingShares)
	c.Assert(status.Collected, qt.Equals, 1)

	_, err = es.Results(7)
	c.Assert(err, qt.ErrorIs, storage.ErrNotFound)

	status, err = es.SubmitShares(7, []string{shares[0].String()})
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateDone)

	results, err := es.Results(7)
	c.Assert(err, qt.IsNil)
	c.Assert(results.Summary, qt.DeepEquals, orchestrator.Summary{Verified: true, VoteCountMatch: true, TotalDecrypted: 5})
	c.Assert(results.Results, qt.DeepEquals, []orchestrator.DecryptedResult{
		{PositionID: 1, CandidateID: 10, VoteCount: 2},
		{PositionID: 1, CandidateID: 11, VoteCount: 1},
		{PositionID: 2, CandidateID: 20, VoteCount: 1},
		{PositionID: 2, CandidateID: 21, VoteCount: 0},
		{PositionID: 2, CandidateID: 22, VoteCount: 1},
	})
}

func TestElectionsPartials(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{})
	ctx := context.Background()

	e, shares, err := es.Create(newElectionRequest(8))
	c.Assert(err, qt.IsNil)
	ballots, err := es.Prove(ctx, 8, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 2, CandidateID: 21}})
	c.Assert(err, qt.IsNil)
	c.Assert(es.Cast(8, ballots), qt.IsNil)
	c.Assert(es.Close(8), qt.IsNil)
	_, err = es.StartTally(ctx, 8)
	c.Assert(err, qt.IsNil)

	targets, err := es.Targets(8)
	c.Assert(err, qt.IsNil)
	c.Assert(targets, qt.Not(qt.HasLen), 0)
	for _, share := range shares[1:] {
		set, err := orchestrator.NewPartialSet(e.Config, share, targets)
		c.Assert(err, qt.IsNil)
		_, err = es.SubmitPartials(8, set)
		c.Assert(err, qt.IsNil)
	}
	status, err := es.TallyStatus(8)
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateDone)
	c.Assert(status.Mode, qt.Equals, orchestrator.ModePartial)

	results, err := es.Results(8)
	c.Assert(err, qt.IsNil)
	c.Assert(results.Summary.TotalDecrypted, qt.Equals, uint64(1))
}

func TestElectionsRejections(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{})
	ctx := context.Background()

	_, _, err := es.Create(&api.NewElection{ID: 1, Participants: 3, Threshold: 4, Positions: newElectionRequest(1).Positions})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidThreshold)

	_, err = es.Election(1)
	c.Assert(err, qt.ErrorIs, storage.ErrNotFound)

	_, _, err = es.Create(newElectionRequest(2))
	c.Assert(err, qt.IsNil)

	_, err = es.Prove(ctx, 2, testutil.VoterSecret(c), []ballot.Selection{
		{PositionID: 1, CandidateID: 10},
		{PositionID: 1, CandidateID: 11},
	})
	c.Assert(err, qt.ErrorIs, types.ErrMultipleSelectionsForPosition)

	_, err = es.Prove(ctx, 3, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 10}})
	c.Assert(err, qt.ErrorIs, storage.ErrNotFound)

	_, err = es.TallyStatus(2)
	c.Assert(err, qt.ErrorIs, orchestrator.ErrNoSession)

	// ballots of another election are rejected before storage
	_, _, err = es.Create(newElectionRequest(3))
	c.Assert(err, qt.IsNil)
	foreign, err := es.Prove(ctx, 3, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 10}})
	c.Assert(err, qt.IsNil)
	c.Assert(es.Cast(2, foreign), qt.ErrorIs, types.ErrProofVerificationFailed)
}

func TestElectionsAbort(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{})
	ctx := context.Background()

	_, shares, err := es.Create(newElectionRequest(4))
	c.Assert(err, qt.IsNil)
	ballots, err := es.Prove(ctx, 4, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 11}})
	c.Assert(err, qt.IsNil)
	c.Assert(es.Cast(4, ballots), qt.IsNil)
	c.Assert(es.Close(4), qt.IsNil)
	_, err = es.StartTally(ctx, 4)
	c.Assert(err, qt.IsNil)

	_, err = es.SubmitShares(4, []string{"not-a-share"})
	c.Assert(err, qt.ErrorIs, types.ErrInvalidShareFormat)

	c.Assert(es.AbortTally(4), qt.IsNil)
	_, err = es.TallyStatus(4)
	c.Assert(err, qt.ErrorIs, orchestrator.ErrNoSession)

	// the tally can start over
	_, err = es.StartTally(ctx, 4)
	c.Assert(err, qt.IsNil)
	status, err := es.SubmitShares(4, []string{shares[0].String(), shares[1].String()})
	c.Assert(err, qt.IsNil)
	c.Assert(status.State, qt.Equals, orchestrator.StateDone)
}

func TestProveTimeout(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{ProofTimeout: time.Nanosecond})

	_, _, err := es.Create(newElectionRequest(5))
	c.Assert(err, qt.IsNil)
	_, err = es.Prove(context.Background(), 5, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 10}})
	c.Assert(err, qt.ErrorIs, ErrProofTimeout)
	c.Assert(err, qt.ErrorIs, types.ErrProofGenerationFailed)
	c.Assert(err, qt.ErrorIs, context.DeadlineExceeded)
}

func TestProveConcurrencyLimit(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{MaxConcurrentProofs: 1, ProofTimeout: 50 * time.Millisecond})
	_, _, err := es.Create(newElectionRequest(9))
	c.Assert(err, qt.IsNil)

	// a proof still running holds the only slot
	c.Assert(es.proofs.Acquire(context.Background(), 1), qt.IsNil)
	_, err = es.Prove(context.Background(), 9, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 10}})
	c.Assert(err, qt.ErrorIs, ErrProofTimeout)
	c.Assert(err, qt.ErrorIs, types.ErrProofGenerationFailed)

	// once released, the next submission is proven
	es.proofs.Release(1)
	es.conf.ProofTimeout = config.DefaultProofTimeout
	ballots, err := es.Prove(context.Background(), 9, testutil.VoterSecret(c), []ballot.Selection{{PositionID: 1, CandidateID: 10}})
	c.Assert(err, qt.IsNil)
	c.Assert(ballots, qt.Not(qt.HasLen), 0)
	c.Assert(es.proofs.TryAcquire(1), qt.IsTrue)
}

func TestDefaultThreshold(t *testing.T) {
	c := qt.New(t)
	es := newElectionsForTest(c, ElectionsConfig{})
	req := newElectionRequest(6)
	req.Threshold = 0
	req.Participants = 5
	e, shares, err := es.Create(req)
	c.Assert(err, qt.IsNil)
	c.Assert(shares, qt.HasLen, 5)
	c.Assert(e.Config.Threshold, qt.Equals, threshold.DefaultThreshold(5))
}
