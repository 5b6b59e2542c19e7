package orchestrator

import (
	"errors"

	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// State is a state of the threshold decryption of one election.
type State string

const (
	StateTallying         State = "tallying"
	StateCollectingShares State = "collectingShares"
	StateReconstructing   State = "reconstructing"
	StateDecrypting       State = "decrypting"
	StateVerified         State = "verified"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Terminal reports whether no further transition can leave the state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the forward transitions; StateFailed is reachable from any
// non-terminal state.
var next = map[State]State{
	StateTallying:         StateCollectingShares,
	StateCollectingShares: StateReconstructing,
	StateReconstructing:   StateDecrypting,
	StateDecrypting:       StateVerified,
	StateVerified:         StateDone,
}

var (
	// ErrWrongState is returned for an operation the current state does not
	// accept.
	ErrWrongState = errors.New("operation not allowed in the current state")
	// ErrNotClosed is returned by Tally before the voting-closed signal.
	ErrNotClosed = errors.New("voting is not closed")
	// ErrAborted is the failure reason of an aborted session.
	ErrAborted = errors.New("tally aborted")
	// ErrSessionExists is returned by Manager.Open for an election with a
	// session still in progress.
	ErrSessionExists = errors.New("tally session already in progress")
	// ErrNoSession is returned by Manager.Get for an unknown election.
	ErrNoSession = errors.New("no tally session for election")
)

// Mode is how trustees contribute: whole key shares or partial
// decryptions.
type Mode string

const (
	ModeUnset   Mode = ""
	ModeShares  Mode = "shares"
	ModePartial Mode = "partials"
)

// DecryptedResult is the final count of one candidate.
type DecryptedResult struct {
	PositionID  uint64 `json:"positionId" cbor:"0,keyasint"`
	CandidateID uint64 `json:"candidateId" cbor:"1,keyasint"`
	VoteCount   uint64 `json:"voteCount" cbor:"2,keyasint"`
}

// Summary is the verification outcome published along the results.
type Summary struct {
	Verified       bool   `json:"verified" cbor:"0,keyasint"`
	VoteCountMatch bool   `json:"voteCountMatch" cbor:"1,keyasint"`
	TotalDecrypted uint64 `json:"totalDecrypted" cbor:"2,keyasint"`
}

// Status is a snapshot of a session.
type Status struct {
	ElectionID types.ElectionID `json:"electionId"`
	State      State            `json:"state"`
	Mode       Mode             `json:"mode,omitempty"`
	Collected  int              `json:"collected"`
	Threshold  int              `json:"threshold"`
	Indices    []int            `json:"indices,omitempty"`
	Error      string           `json:"error,omitempty"`
}
