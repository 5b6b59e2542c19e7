package threshold

import (
	"fmt"
	"sort"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/paillier"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/shamir"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Reconstruct recovers the private key from at least t distinct shares. Only
// the t lowest indices are used. The result is checked against the public
// key: ElGamal requires d·G == PK, Paillier requires the recovered factor to
// divide N and rebuild (N, G). Any failure wraps
// types.ErrReconstructionFailed.
func Reconstruct(cfg *ElectionKeyConfig, shares []*KeyShare) (*homomorphic.PrivateKey, error) {
	byIndex := make(map[int]*KeyShare, len(shares))
	for _, s := range shares {
		if err := ValidateShare(cfg, s); err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrReconstructionFailed, err)
		}
		if prev, ok := byIndex[s.Index]; ok && prev.Value.Cmp(s.Value) != 0 {
			return nil, fmt.Errorf("%w: %w: conflicting values for index %d",
				types.ErrReconstructionFailed, types.ErrInvalidShareFormat, s.Index)
		}
		byIndex[s.Index] = s
	}
	if len(byIndex) < cfg.Threshold {
		return nil, fmt.Errorf("%w: %w: have %d, need %d",
			types.ErrReconstructionFailed, types.ErrInsufficientShares, len(byIndex), cfg.Threshold)
	}
	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	points := make([]*shamir.Share, cfg.Threshold)
	for i, idx := range indices[:cfg.Threshold] {
		points[i] = &shamir.Share{Index: idx, Value: byIndex[idx].Value}
	}

	secret, err := shamir.Interpolate(points, cfg.Field())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrReconstructionFailed, err)
	}

	var sk *homomorphic.PrivateKey
	switch cfg.Scheme {
	case homomorphic.SchemePaillier:
		psk, err := paillier.SecretKeyFromFactor(cfg.PublicKey.Paillier, secret)
		arith.Wipe(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrReconstructionFailed, err)
		}
		sk = homomorphic.NewPaillierPrivateKey(psk)
	case homomorphic.SchemeElGamal:
		sk = homomorphic.NewElGamalPrivateKey(secret, cfg.PublicKey.ElGamal.Curve)
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q", types.ErrReconstructionFailed, cfg.Scheme)
	}
	if !sk.Matches(cfg.PublicKey) {
		sk.Wipe()
		return nil, fmt.Errorf("%w: recovered key does not match the public key", types.ErrReconstructionFailed)
	}
	return sk, nil
}
