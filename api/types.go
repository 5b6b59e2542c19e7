package api

import (
	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// NewElection is the request to create an election. The threshold is
// optional and defaults to a simple majority of the participants.
type NewElection struct {
	ID           types.ElectionID   `json:"id"`
	Scheme       homomorphic.Scheme `json:"scheme"`
	Participants int                `json:"participants"`
	Threshold    int                `json:"threshold,omitempty"`
	Positions    []*ballot.Position `json:"positions"`
	Authorities  []string           `json:"authorities,omitempty"`
	Metadata     map[string]string  `json:"metadata,omitempty"`
}

// NewElectionResponse carries the created election and the key shares in
// the "<index>:<hex>" format. The shares are returned only once: the server
// does not keep them.
type NewElectionResponse struct {
	Election *storage.Election `json:"election"`
	Shares   []string          `json:"shares"`
}

// ProveRequest asks the server to encrypt and prove the selections of a
// voter.
type ProveRequest struct {
	VoterSecret *types.BigInt      `json:"voterSecret"`
	Selections  []ballot.Selection `json:"selections"`
}

// Ballots is the list of encrypted ballots of one voter submission.
type Ballots struct {
	Ballots []*ballot.EncryptedBallot `json:"ballots"`
}

// CastResponse is returned when a submission is accepted.
type CastResponse struct {
	BallotIDs []types.HexBytes `json:"ballotIds"`
}

// Targets lists the ciphertexts trustees must partially decrypt, in the
// order the partial decryptions are expected.
type Targets struct {
	Targets []orchestrator.Target `json:"targets"`
}
