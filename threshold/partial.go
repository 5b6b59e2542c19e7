package threshold

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/elgamal"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/shamir"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// PartialDecryption is a trustee's contribution d_i·C1 to the decryption of
// one ElGamal ciphertext, with a proof that it used the same d_i as its
// verification key Y_i.
type PartialDecryption struct {
	Index       int                `json:"index"`
	AuthorityID string             `json:"authorityId,omitempty"`
	Share       types.HexBytes     `json:"share"`
	Proof       *elgamal.DLEQProof `json:"proof"`
}

func requireElGamal(cfg *ElectionKeyConfig) error {
	if cfg.Scheme != homomorphic.SchemeElGamal {
		return fmt.Errorf("partial decryption requires an elgamal key, got %s", cfg.Scheme)
	}
	return nil
}

// PartialDecrypt computes the partial decryption of ct with share.
func PartialDecrypt(cfg *ElectionKeyConfig, share *KeyShare, ct *elgamal.Ciphertext) (*PartialDecryption, error) {
	if err := requireElGamal(cfg); err != nil {
		return nil, err
	}
	if err := ValidateShare(cfg, share); err != nil {
		return nil, err
	}
	if !ct.IsValid() {
		return nil, fmt.Errorf("%w: invalid ciphertext", types.ErrDecryptionFailed)
	}
	d := ct.C1.New()
	d.ScalarMult(ct.C1, share.Value)
	proof, err := elgamal.ProveDLEQ(share.Value, ct.C1)
	if err != nil {
		return nil, err
	}
	return &PartialDecryption{
		Index:       share.Index,
		AuthorityID: share.AuthorityID,
		Share:       d.Marshal(),
		Proof:       proof,
	}, nil
}

// VerifyPartial checks that pd is d_i·C1 for the d_i behind verification
// key Y_i. Failures wrap types.ErrInvalidShareFormat.
func VerifyPartial(cfg *ElectionKeyConfig, ct *elgamal.Ciphertext, pd *PartialDecryption) (ecc.Point, error) {
	if err := requireElGamal(cfg); err != nil {
		return nil, err
	}
	if pd == nil {
		return nil, fmt.Errorf("%w: empty partial decryption", types.ErrInvalidShareFormat)
	}
	y, err := cfg.VerificationKey(pd.Index)
	if err != nil {
		return nil, err
	}
	d := curves.New(cfg.PublicKey.ElGamal.Curve)
	if err := d.Unmarshal(pd.Share); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidShareFormat, err)
	}
	if !elgamal.VerifyDLEQ(pd.Proof, y, ct.C1, d) {
		return nil, fmt.Errorf("%w: proof rejected for index %d", types.ErrInvalidShareFormat, pd.Index)
	}
	return d, nil
}

// CheckVerificationKeys verifies, for the given set of t indices, that
// Σ λ_i·Y_i == PK. It is the self-check of the partial variant: the
// interpolated key is consistent without d ever being materialized.
func CheckVerificationKeys(cfg *ElectionKeyConfig, indices []int) (map[int]*big.Int, error) {
	if err := requireElGamal(cfg); err != nil {
		return nil, err
	}
	lambdas, err := shamir.LagrangeCoefficients(indices, cfg.Field())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrReconstructionFailed, err)
	}
	sum := curves.New(cfg.PublicKey.ElGamal.Curve)
	for _, idx := range indices {
		y, err := cfg.VerificationKey(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrReconstructionFailed, err)
		}
		y.ScalarMult(y, lambdas[idx])
		sum.Add(sum, y)
	}
	if !sum.Equal(cfg.PublicKey.ElGamal.Point) {
		return nil, fmt.Errorf("%w: verification keys do not interpolate to the public key", types.ErrReconstructionFailed)
	}
	return lambdas, nil
}

// CombinePartials verifies the partial decryptions of ct, combines t of them
// in the exponent with Lagrange weights and returns the plaintext searched
// in [0, maxMessage]:
//
//	M = C2 - Σ λ_i·(d_i·C1)
func CombinePartials(cfg *ElectionKeyConfig, ct *elgamal.Ciphertext, partials []*PartialDecryption, maxMessage uint64) (*big.Int, error) {
	if err := requireElGamal(cfg); err != nil {
		return nil, err
	}
	if !ct.IsValid() {
		return nil, fmt.Errorf("%w: invalid ciphertext", types.ErrDecryptionFailed)
	}
	points := make(map[int]ecc.Point, len(partials))
	for _, pd := range partials {
		d, err := VerifyPartial(cfg, ct, pd)
		if err != nil {
			return nil, err
		}
		points[pd.Index] = d
	}
	if len(points) < cfg.Threshold {
		return nil, fmt.Errorf("%w: %w: have %d, need %d",
			types.ErrReconstructionFailed, types.ErrInsufficientShares, len(points), cfg.Threshold)
	}
	indices := make([]int, 0, len(points))
	for idx := range points {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	indices = indices[:cfg.Threshold]

	lambdas, err := CheckVerificationKeys(cfg, indices)
	if err != nil {
		return nil, err
	}
	s := ct.C1.New()
	for _, idx := range indices {
		term := s.New()
		term.ScalarMult(points[idx], lambdas[idx])
		s.Add(s, term)
	}
	s.Neg(s)
	m := ct.C2.New()
	m.Add(ct.C2, s)

	G := m.New()
	G.SetGenerator()
	msg, err := elgamal.BabyStepGiantStepECC(m, G, maxMessage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecryptionFailed, err)
	}
	return msg, nil
}
