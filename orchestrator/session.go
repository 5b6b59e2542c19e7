// Package orchestrator drives the threshold decryption of an election as a
// synchronous state machine: tally the ballots, collect t trustee
// contributions, recover the key (or check the partial decryptions), decrypt
// every aggregate, verify the counts and publish them.
package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/tally"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Counter supplies the number of ballots accepted for a position, the
// reference the decrypted counts are checked against.
type Counter interface {
	AcceptedBallots(electionID types.ElectionID, positionID uint64) (int, error)
}

// Publisher receives the verified results.
type Publisher interface {
	PublishResults(electionID types.ElectionID, results []DecryptedResult, summary Summary) error
}

// Env holds the collaborators of a session. A nil Counter makes the
// session check against the number of aggregated ballots; a nil Publisher
// skips publication.
type Env struct {
	Counter   Counter
	Publisher Publisher
}

// TallyInput is what the Tallying step consumes.
type TallyInput struct {
	Closed    bool
	Positions []*ballot.Position
	Ballots   []*ballot.EncryptedBallot
}

// Session is the threshold decryption of one election. Every method is
// serialized by the session lock, so at most one transition is in flight.
type Session struct {
	mu  sync.Mutex
	cfg *threshold.ElectionKeyConfig
	env Env

	state State
	err   error

	tallies  []*tally.AggregateTally
	targets  []Target
	mode     Mode
	shares   map[int]*threshold.KeyShare
	partials map[int]*PartialSet
	key      *homomorphic.PrivateKey
	indices  []int

	results []DecryptedResult
	summary Summary
}

// NewSession starts the decryption of the election described by cfg in
// StateTallying.
func NewSession(cfg *threshold.ElectionKeyConfig, env Env) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil election key config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:      cfg,
		env:      env,
		state:    StateTallying,
		shares:   make(map[int]*threshold.KeyShare),
		partials: make(map[int]*PartialSet),
	}, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure reason once the session is in StateFailed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		ElectionID: s.cfg.ElectionID,
		State:      s.state,
		Mode:       s.mode,
		Collected:  s.collected(),
		Threshold:  s.cfg.Threshold,
		Indices:    s.collectedIndices(),
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

func (s *Session) collected() int {
	if s.mode == ModePartial {
		return len(s.partials)
	}
	return len(s.shares)
}

func (s *Session) collectedIndices() []int {
	indices := make([]int, 0, s.collected())
	for idx := range s.shares {
		indices = append(indices, idx)
	}
	for idx := range s.partials {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// fail moves the session to StateFailed, drops all secret material and
// returns err.
func (s *Session) fail(err error) error {
	log.Warnw("tally failed", "election", s.cfg.ElectionID.String(), "state", string(s.state), "error", err.Error())
	s.state = StateFailed
	s.err = err
	s.results = nil
	s.discardSecrets()
	return err
}

// discardSecrets zeroes and drops shares, partials and the recovered key.
func (s *Session) discardSecrets() {
	for idx, share := range s.shares {
		share.Wipe()
		delete(s.shares, idx)
	}
	clear(s.partials)
	if s.key != nil {
		s.key.Wipe()
		s.key = nil
	}
	s.indices = nil
}

func (s *Session) transition(to State) {
	log.Infow("tally state", "election", s.cfg.ElectionID.String(), "from", string(s.state), "to", string(to))
	s.state = to
}

// Tally runs the Tallying step: every position is aggregated and the
// session moves to StateCollectingShares. It requires the voting-closed
// signal. An election without ballots fails with types.ErrEmptyTallySet.
func (s *Session) Tally(ctx context.Context, in TallyInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTallying {
		return fmt.Errorf("%w: tally in state %s", ErrWrongState, s.state)
	}
	if !in.Closed {
		return ErrNotClosed
	}
	if len(in.Positions) == 0 {
		return s.fail(fmt.Errorf("%w: election has no positions", types.ErrEmptyTallySet))
	}
	tallies, err := tally.TallyElection(ctx, s.cfg.PublicKey, in.Positions, in.Ballots)
	if err != nil {
		return s.fail(err)
	}
	s.tallies = tallies
	if s.cfg.Scheme == homomorphic.SchemeElGamal {
		s.targets = targetsOf(tallies)
	}
	s.transition(next[s.state])
	return nil
}

// Tallies returns the encrypted aggregates once the Tallying step is done.
func (s *Session) Tallies() []*tally.AggregateTally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tallies
}

// SubmitShareText parses a "<index>:<hex>" line and submits it.
func (s *Session) SubmitShareText(line string) (int, error) {
	share, err := threshold.ParseShare(line)
	if err != nil {
		return s.Status().Collected, err
	}
	return s.SubmitShare(share)
}

// SubmitShare adds a trustee key share and returns the number of distinct
// shares collected. A share failing validation is rejected with
// types.ErrInvalidShareFormat and leaves the count unchanged. A share for
// an index already present replaces it. Reaching the threshold moves the
// session to StateReconstructing.
func (s *Session) SubmitShare(share *threshold.KeyShare) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptContribution(ModeShares); err != nil {
		return s.collected(), err
	}
	if err := threshold.ValidateShare(s.cfg, share); err != nil {
		return s.collected(), err
	}
	if prev, ok := s.shares[share.Index]; ok {
		prev.Wipe()
	}
	s.mode = ModeShares
	s.shares[share.Index] = share.Clone()
	log.Infow("key share collected", "election", s.cfg.ElectionID.String(),
		"index", share.Index, "collected", len(s.shares), "threshold", s.cfg.Threshold)
	s.checkQuorum()
	return len(s.shares), nil
}

// SubmitPartials adds one trustee's partial decryptions of every aggregate
// (ElGamal only). Each partial is checked against the trustee's
// verification key before it is counted.
func (s *Session) SubmitPartials(set *PartialSet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptContribution(ModePartial); err != nil {
		return s.collected(), err
	}
	if s.cfg.Scheme != homomorphic.SchemeElGamal {
		return s.collected(), fmt.Errorf("%w: partial decryptions require an elgamal key",
			types.ErrInvalidShareFormat)
	}
	if err := set.verify(s.cfg, s.targets); err != nil {
		return s.collected(), err
	}
	s.mode = ModePartial
	s.partials[set.Index] = set
	log.Infow("partial decryptions collected", "election", s.cfg.ElectionID.String(),
		"index", set.Index, "collected", len(s.partials), "threshold", s.cfg.Threshold)
	s.checkQuorum()
	return len(s.partials), nil
}

func (s *Session) acceptContribution(mode Mode) error {
	if s.state != StateCollectingShares {
		return fmt.Errorf("%w: contribution in state %s", ErrWrongState, s.state)
	}
	if s.mode != ModeUnset && s.mode != mode {
		return fmt.Errorf("%w: session collects %s", types.ErrInvalidShareFormat, s.mode)
	}
	return nil
}

func (s *Session) checkQuorum() {
	if s.collected() == s.cfg.Threshold {
		s.transition(next[s.state])
	}
}

// Targets returns the aggregate ciphertexts trustees must partially
// decrypt, in the order PartialSet expects them.
func (s *Session) Targets() []Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets
}

// Step performs exactly one transition. In StateCollectingShares below the
// threshold it returns types.ErrReconstructionFailed wrapping
// types.ErrInsufficientShares and the session keeps waiting for shares.
func (s *Session) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step()
}

func (s *Session) step() error {
	switch s.state {
	case StateTallying:
		return fmt.Errorf("%w: tallying needs the ballots, call Tally", ErrWrongState)
	case StateCollectingShares:
		return fmt.Errorf("%w: %w: have %d, need %d", types.ErrReconstructionFailed,
			types.ErrInsufficientShares, s.collected(), s.cfg.Threshold)
	case StateReconstructing:
		return s.reconstruct()
	case StateDecrypting:
		return s.decrypt()
	case StateVerified:
		return s.publish()
	case StateFailed:
		return fmt.Errorf("%w: session failed: %w", ErrWrongState, s.err)
	default:
		return fmt.Errorf("%w: session is %s", ErrWrongState, s.state)
	}
}

// Run drives the session until it reaches a terminal state or needs input.
func (s *Session) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.state.Terminal() {
		if err := s.step(); err != nil {
			return err
		}
	}
	if s.state == StateFailed {
		return s.err
	}
	return nil
}

// Abort discards the session state. It is only allowed before decryption
// starts.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateTallying, StateCollectingShares, StateReconstructing:
		s.tallies = nil
		s.targets = nil
		s.fail(ErrAborted)
		return nil
	default:
		return fmt.Errorf("%w: abort in state %s", ErrWrongState, s.state)
	}
}

// reconstruct recovers the key from the collected shares, or checks that
// the verification keys of the partial decryptions interpolate to the
// public key.
func (s *Session) reconstruct() error {
	indices := s.collectedIndices()
	switch s.mode {
	case ModePartial:
		if _, err := threshold.CheckVerificationKeys(s.cfg, indices); err != nil {
			return s.fail(err)
		}
	default:
		shares := make([]*threshold.KeyShare, 0, len(s.shares))
		for _, idx := range indices {
			shares = append(shares, s.shares[idx])
		}
		key, err := threshold.Reconstruct(s.cfg, shares)
		if err != nil {
			return s.fail(err)
		}
		s.key = key
	}
	s.indices = indices
	s.transition(next[s.state])
	return nil
}

// decrypt decrypts every aggregate and checks the counts. The secret
// material is discarded whatever the outcome.
func (s *Session) decrypt() error {
	defer s.discardSecrets()
	var results []DecryptedResult
	var summary Summary
	target := 0
	for _, at := range s.tallies {
		bound := uint64(at.Ballots)
		total, err := s.decryptOne(target, at.Total, bound)
		if err != nil {
			return s.fail(fmt.Errorf("position %d total: %w", at.PositionID, err))
		}
		target++
		var sum uint64
		for _, ct := range at.Candidates {
			count, err := s.decryptOne(target, ct.Ciphertext, bound)
			if err != nil {
				return s.fail(fmt.Errorf("position %d candidate %d: %w", at.PositionID, ct.CandidateID, err))
			}
			target++
			sum += count
			results = append(results, DecryptedResult{
				PositionID:  at.PositionID,
				CandidateID: ct.CandidateID,
				VoteCount:   count,
			})
		}
		expected, err := s.expectedCount(at)
		if err != nil {
			return s.fail(fmt.Errorf("%w: position %d: %v", types.ErrTallyIntegrityMismatch, at.PositionID, err))
		}
		if sum != total || total != expected {
			return s.fail(fmt.Errorf("%w: position %d: candidates sum %d, total %d, accepted %d",
				types.ErrTallyIntegrityMismatch, at.PositionID, sum, total, expected))
		}
		summary.TotalDecrypted += total
	}
	summary.Verified = true
	summary.VoteCountMatch = true
	s.results = results
	s.summary = summary
	s.transition(next[s.state])
	return nil
}

// decryptOne decrypts the aggregate at position target of Targets, with
// plaintexts searched in [0, bound].
func (s *Session) decryptOne(target int, ct *homomorphic.Ciphertext, bound uint64) (uint64, error) {
	var m *big.Int
	var err error
	if s.mode == ModePartial {
		partials := make([]*threshold.PartialDecryption, 0, len(s.indices))
		for _, idx := range s.indices {
			partials = append(partials, s.partials[idx].Partials[target])
		}
		m, err = threshold.CombinePartials(s.cfg, ct.ElGamal, partials, bound)
	} else {
		m, err = s.key.Decrypt(ct, bound)
	}
	if err != nil {
		return 0, err
	}
	if !m.IsUint64() {
		return 0, fmt.Errorf("%w: count out of range", types.ErrDecryptionFailed)
	}
	return m.Uint64(), nil
}

func (s *Session) expectedCount(at *tally.AggregateTally) (uint64, error) {
	if s.env.Counter == nil {
		return uint64(at.Ballots), nil
	}
	n, err := s.env.Counter.AcceptedBallots(s.cfg.ElectionID, at.PositionID)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative accepted count %d", n)
	}
	return uint64(n), nil
}

// publish hands the results to the Publisher and moves to StateDone.
func (s *Session) publish() error {
	if s.env.Publisher != nil {
		if err := s.env.Publisher.PublishResults(s.cfg.ElectionID, s.results, s.summary); err != nil {
			return fmt.Errorf("publish results: %w", err)
		}
	}
	s.discardSecrets()
	s.transition(next[s.state])
	return nil
}

// Results returns the decrypted counts and the summary once the counts are
// verified.
func (s *Session) Results() ([]DecryptedResult, Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateVerified && s.state != StateDone {
		if s.err != nil {
			return nil, Summary{}, s.err
		}
		return nil, Summary{}, fmt.Errorf("%w: results in state %s", ErrWrongState, s.state)
	}
	return append([]DecryptedResult(nil), s.results...), s.summary, nil
}
