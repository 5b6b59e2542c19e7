package orchestrator

import (
	"fmt"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/elgamal"
	"github.com/harudayoo/phoniphaleia-vs-sub000/tally"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Target is an aggregate ciphertext to decrypt. CandidateID is zero for the
// position total.
type Target struct {
	PositionID  uint64              `json:"positionId"`
	CandidateID uint64              `json:"candidateId"`
	Ciphertext  *elgamal.Ciphertext `json:"ciphertext"`
}

// targetsOf lists, per position, the total followed by each candidate.
func targetsOf(tallies []*tally.AggregateTally) []Target {
	var targets []Target
	for _, at := range tallies {
		targets = append(targets, Target{PositionID: at.PositionID, Ciphertext: at.Total.ElGamal})
		for _, ct := range at.Candidates {
			targets = append(targets, Target{
				PositionID:  at.PositionID,
				CandidateID: ct.CandidateID,
				Ciphertext:  ct.Ciphertext.ElGamal,
			})
		}
	}
	return targets
}

// PartialSet is one trustee's contribution in the partial decryption mode:
// a partial decryption of every target, in Targets order.
type PartialSet struct {
	Index       int                            `json:"index"`
	AuthorityID string                         `json:"authorityId,omitempty"`
	Partials    []*threshold.PartialDecryption `json:"partials"`
}

// NewPartialSet computes the contribution of the trustee holding share.
// It is what a trustee runs locally; the share never leaves it.
func NewPartialSet(cfg *threshold.ElectionKeyConfig, share *threshold.KeyShare, targets []Target) (*PartialSet, error) {
	set := &PartialSet{
		Index:       share.Index,
		AuthorityID: share.AuthorityID,
		Partials:    make([]*threshold.PartialDecryption, len(targets)),
	}
	for i, t := range targets {
		pd, err := threshold.PartialDecrypt(cfg, share, t.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		set.Partials[i] = pd
	}
	return set, nil
}

// verify checks every partial decryption of the set against the trustee's
// verification key. Failures wrap types.ErrInvalidShareFormat.
func (set *PartialSet) verify(cfg *threshold.ElectionKeyConfig, targets []Target) error {
	if set == nil {
		return fmt.Errorf("%w: empty partial set", types.ErrInvalidShareFormat)
	}
	if set.Index < 1 || set.Index > cfg.Participants {
		return fmt.Errorf("%w: index %d out of range 1..%d", types.ErrInvalidShareFormat, set.Index, cfg.Participants)
	}
	if len(set.Partials) != len(targets) {
		return fmt.Errorf("%w: expected %d partial decryptions, got %d",
			types.ErrInvalidShareFormat, len(targets), len(set.Partials))
	}
	for i, pd := range set.Partials {
		if pd == nil || pd.Index != set.Index {
			return fmt.Errorf("%w: partial %d does not belong to index %d", types.ErrInvalidShareFormat, i, set.Index)
		}
		if _, err := threshold.VerifyPartial(cfg, targets[i].Ciphertext, pd); err != nil {
			return fmt.Errorf("partial %d: %w", i, err)
		}
	}
	return nil
}
