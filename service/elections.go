package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
	"github.com/harudayoo/phoniphaleia-vs-sub000/config"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// ErrProofTimeout is returned when proof generation exceeds its deadline.
var ErrProofTimeout = errors.New("proof generation timed out")

var _ api.Elections = (*Elections)(nil)

// ElectionsConfig tunes the elections service.
type ElectionsConfig struct {
	PaillierBits int
	Curve        string
	ProofTimeout time.Duration
	// MaxConcurrentProofs caps the proofs generated at once. A proof that
	// times out keeps its slot until the prover returns.
	MaxConcurrentProofs int
}

// Elections glues the tally engine to the storage: it creates elections,
// accepts ballots and drives the threshold decryption.
type Elections struct {
	storage  *storage.Storage
	keys     *ballotproof.Keys
	sessions *orchestrator.Manager
	proofs   *semaphore.Weighted
	conf     ElectionsConfig
}

// NewElections returns the service. Zero config values take the defaults
// of the config package.
func NewElections(stg *storage.Storage, keys *ballotproof.Keys, conf ElectionsConfig) *Elections {
	if conf.PaillierBits == 0 {
		conf.PaillierBits = config.DefaultPaillierBits
	}
	if conf.Curve == "" {
		conf.Curve = config.DefaultCurve
	}
	if conf.ProofTimeout == 0 {
		conf.ProofTimeout = config.DefaultProofTimeout
	}
	if conf.MaxConcurrentProofs <= 0 {
		conf.MaxConcurrentProofs = runtime.NumCPU()
	}
	return &Elections{
		storage:  stg,
		keys:     keys,
		sessions: orchestrator.NewManager(),
		proofs:   semaphore.NewWeighted(int64(conf.MaxConcurrentProofs)),
		conf:     conf,
	}
}

// Create generates the election keys and stores the election. The shares
// are returned once and never stored.
func (es *Elections) Create(req *api.NewElection) (*storage.Election, []*threshold.KeyShare, error) {
	if req.Scheme == "" {
		req.Scheme = config.DefaultScheme
	}
	if req.Threshold == 0 {
		req.Threshold = threshold.DefaultThreshold(req.Participants)
	}
	if len(req.Positions) == 0 {
		return nil, nil, fmt.Errorf("election has no positions")
	}
	for _, p := range req.Positions {
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
	}
	if _, err := es.storage.Election(req.ID); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", storage.ErrElectionExists, req.ID)
	}
	cfg, shares, err := threshold.Generate(req.ID, req.Participants, req.Threshold, req.Scheme, threshold.Options{
		PaillierBits: es.conf.PaillierBits,
		Curve:        es.conf.Curve,
		Authorities:  req.Authorities,
		Metadata:     req.Metadata,
	})
	if err != nil {
		return nil, nil, err
	}
	e := &storage.Election{Config: cfg, Positions: req.Positions}
	if err := es.storage.SetElection(e); err != nil {
		return nil, nil, err
	}
	return e, shares, nil
}

// Election returns the stored election.
func (es *Elections) Election(id types.ElectionID) (*storage.Election, error) {
	return es.storage.Election(id)
}

func (es *Elections) caster(id types.ElectionID) (*ballot.Caster, *storage.Election, error) {
	e, err := es.storage.Election(id)
	if err != nil {
		return nil, nil, err
	}
	c, err := ballot.NewCaster(id, e.Config.PublicKey, e.Positions, es.keys)
	if err != nil {
		return nil, nil, err
	}
	return c, e, nil
}

// Prove builds the encrypted ballots of a voter. Proof generation is
// bounded by ctx and the configured proof timeout. The prover cannot be
// interrupted: on timeout Prove returns at once while the prover runs to
// completion in the background, holding one of the MaxConcurrentProofs
// slots, so abandoned proofs cannot pile up.
func (es *Elections) Prove(ctx context.Context, id types.ElectionID, voterSecret *big.Int,
	selections []ballot.Selection,
) ([]*ballot.EncryptedBallot, error) {
	// the rules are checked before any expensive work
	if err := ballot.CheckVoteRules(selections); err != nil {
		return nil, err
	}
	c, _, err := es.caster(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, es.conf.ProofTimeout)
	defer cancel()
	if err := es.proofs.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", types.ErrProofGenerationFailed, ErrProofTimeout, err)
	}

	type result struct {
		ballots []*ballot.EncryptedBallot
		err     error
	}
	done := make(chan result, 1)
	go func() {
		ballots, err := c.Prepare(voterSecret, selections)
		es.proofs.Release(1)
		done <- result{ballots, err}
	}()
	select {
	case r := <-done:
		return r.ballots, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w: %w", types.ErrProofGenerationFailed, ErrProofTimeout, ctx.Err())
	}
}

// Cast verifies a voter submission and stores it. Rejected ballots are
// never stored.
func (es *Elections) Cast(id types.ElectionID, ballots []*ballot.EncryptedBallot) error {
	c, e, err := es.caster(id)
	if err != nil {
		return err
	}
	if e.Closed {
		return fmt.Errorf("%w: %s", storage.ErrElectionClosed, id)
	}
	if err := c.Accept(ballots); err != nil {
		return err
	}
	if err := es.storage.PushBallots(id, ballots); err != nil {
		return err
	}
	log.Infow("ballots accepted", "election", id.String(), "count", len(ballots))
	return nil
}

// Close records the voting-closed signal.
func (es *Elections) Close(id types.ElectionID) error {
	return es.storage.CloseElection(id)
}

// StartTally opens the decryption session of a closed election and runs
// the Tallying step over the stored ballots.
func (es *Elections) StartTally(ctx context.Context, id types.ElectionID) (orchestrator.Status, error) {
	e, err := es.storage.Election(id)
	if err != nil {
		return orchestrator.Status{}, err
	}
	if !e.Closed {
		return orchestrator.Status{}, orchestrator.ErrNotClosed
	}
	ballots, err := es.storage.Ballots(id)
	if err != nil {
		return orchestrator.Status{}, err
	}
	s, err := es.sessions.Open(e.Config, orchestrator.Env{Counter: es.storage, Publisher: es.storage})
	if err != nil {
		return orchestrator.Status{}, err
	}
	err = s.Tally(ctx, orchestrator.TallyInput{
		Closed:    e.Closed,
		Positions: e.Positions,
		Ballots:   ballots,
	})
	return s.Status(), err
}

// SubmitShares submits key share lines in the "<index>:<hex>" format. Once
// the threshold is reached the session is driven to completion. Every line
// is tried; the first error is returned.
func (es *Elections) SubmitShares(id types.ElectionID, lines []string) (orchestrator.Status, error) {
	s, err := es.sessions.Get(id)
	if err != nil {
		return orchestrator.Status{}, err
	}
	var firstErr error
	for _, line := range lines {
		if s.State() != orchestrator.StateCollectingShares {
			break
		}
		if _, err := s.SubmitShareText(line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return s.Status(), firstErr
	}
	return es.advance(s)
}

// SubmitPartials submits the partial decryptions of one trustee.
func (es *Elections) SubmitPartials(id types.ElectionID, set *orchestrator.PartialSet) (orchestrator.Status, error) {
	s, err := es.sessions.Get(id)
	if err != nil {
		return orchestrator.Status{}, err
	}
	if _, err := s.SubmitPartials(set); err != nil {
		return s.Status(), err
	}
	return es.advance(s)
}

// advance runs the session once the quorum is reached.
func (es *Elections) advance(s *orchestrator.Session) (orchestrator.Status, error) {
	if s.State() != orchestrator.StateReconstructing {
		return s.Status(), nil
	}
	err := s.Run()
	return s.Status(), err
}

// Targets returns the aggregates trustees must partially decrypt.
func (es *Elections) Targets(id types.ElectionID) ([]orchestrator.Target, error) {
	s, err := es.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Targets(), nil
}

// TallyStatus returns the state of the decryption session.
func (es *Elections) TallyStatus(id types.ElectionID) (orchestrator.Status, error) {
	s, err := es.sessions.Get(id)
	if err != nil {
		return orchestrator.Status{}, err
	}
	return s.Status(), nil
}

// AbortTally aborts and forgets the decryption session.
func (es *Elections) AbortTally(id types.ElectionID) error {
	s, err := es.sessions.Get(id)
	if err != nil {
		return err
	}
	if err := s.Abort(); err != nil {
		return err
	}
	es.sessions.Remove(id)
	return nil
}

// Results returns the published results.
func (es *Elections) Results(id types.ElectionID) (*storage.Results, error) {
	return es.storage.Results(id)
}
