// Package threshold generates election keys whose private half is Shamir
// shared among n trustees, so that any t of them can recover it (or, for
// ElGamal, decrypt without ever materializing it).
package threshold

import (
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/elgamal"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/paillier"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/shamir"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

const (
	// DefaultPaillierBits is the modulus size used when Options leaves it unset.
	DefaultPaillierBits = 2048
	// fieldExtraBits is how much larger than the shared Paillier factor the
	// Shamir field is.
	fieldExtraBits = 64
)

// ElectionKeyConfig is the public outcome of key generation. It never
// contains the private key and is immutable once produced. VerificationKeys
// holds the compressed points d_i·G in index order (ElGamal only).
type ElectionKeyConfig struct {
	ElectionID       types.ElectionID       `json:"electionId" cbor:"0,keyasint"`
	Scheme           homomorphic.Scheme     `json:"scheme" cbor:"1,keyasint"`
	PublicKey        *homomorphic.PublicKey `json:"publicKey" cbor:"2,keyasint"`
	Threshold        int                    `json:"threshold" cbor:"3,keyasint"`
	Participants     int                    `json:"participants" cbor:"4,keyasint"`
	FieldModulus     *types.BigInt          `json:"fieldModulus" cbor:"5,keyasint"`
	VerificationKeys []types.HexBytes       `json:"verificationKeys,omitempty" cbor:"6,keyasint,omitempty"`
	Authorities      []string               `json:"authorities,omitempty" cbor:"7,keyasint,omitempty"`
	Metadata         map[string]string      `json:"metadata,omitempty" cbor:"8,keyasint,omitempty"`
	Fingerprint      types.HexBytes         `json:"fingerprint" cbor:"9,keyasint"`
}

// Options tune key generation.
type Options struct {
	// PaillierBits is the Paillier modulus size. Defaults to DefaultPaillierBits.
	PaillierBits int
	// Curve is the ElGamal group. Defaults to curves.DefaultCurve.
	Curve string
	// Authorities optionally names the trustee holding each share, in index
	// order. When set it must have n entries.
	Authorities []string
	Metadata    map[string]string
}

// DefaultThreshold returns ceil(n/2)+1, capped at n. It is a suggestion for
// callers; Generate always takes t explicitly.
func DefaultThreshold(n int) int {
	t := (n+1)/2 + 1
	if t > n {
		return n
	}
	return t
}

// Generate creates the key pair of an election, splits the private key into
// n shares with threshold t and returns the public configuration together
// with the shares. The private key is discarded before returning.
func Generate(electionID types.ElectionID, n, t int, scheme homomorphic.Scheme, opts Options) (*ElectionKeyConfig, []*KeyShare, error) {
	if n < 1 || t < 1 || t > n {
		return nil, nil, fmt.Errorf("%w: t=%d n=%d", types.ErrInvalidThreshold, t, n)
	}
	if opts.Authorities != nil && len(opts.Authorities) != n {
		return nil, nil, fmt.Errorf("%w: %d authorities for %d shares", types.ErrInvalidThreshold, len(opts.Authorities), n)
	}
	cfg := &ElectionKeyConfig{
		ElectionID:   electionID,
		Scheme:       scheme,
		Threshold:    t,
		Participants: n,
		Authorities:  opts.Authorities,
		Metadata:     opts.Metadata,
	}
	var (
		secret *big.Int
		field  *big.Int
		curve  ecc.Point
	)
	switch scheme {
	case homomorphic.SchemePaillier:
		bits := opts.PaillierBits
		if bits == 0 {
			bits = DefaultPaillierBits
		}
		pk, sk, err := paillier.GenerateKey(bits)
		if err != nil {
			return nil, nil, err
		}
		defer sk.Wipe()
		cfg.PublicKey = homomorphic.NewPaillierPublicKey(pk)
		secret = new(big.Int).Set(sk.P)
		if field, err = arith.PrimeAbove(secret, fieldExtraBits); err != nil {
			return nil, nil, err
		}
	case homomorphic.SchemeElGamal:
		curveType := opts.Curve
		if curveType == "" {
			curveType = curves.DefaultCurve
		}
		if !curves.IsValid(curveType) {
			return nil, nil, fmt.Errorf("unsupported curve %q", curveType)
		}
		curve = curves.New(curveType)
		pk, d, err := elgamal.GenerateKey(curve)
		if err != nil {
			return nil, nil, err
		}
		cfg.PublicKey = homomorphic.NewElGamalPublicKey(pk)
		secret = d
		field = curve.Order()
	default:
		return nil, nil, fmt.Errorf("%w: unknown scheme %q", types.ErrInvalidPublicKey, scheme)
	}
	defer arith.Wipe(secret)
	cfg.FieldModulus = types.FromBig(field)

	parts, err := shamir.Split(secret, t, n, field)
	if err != nil {
		return nil, nil, err
	}
	shares := make([]*KeyShare, n)
	for i, p := range parts {
		shares[i] = &KeyShare{Index: p.Index, Value: p.Value}
		if opts.Authorities != nil {
			shares[i].AuthorityID = opts.Authorities[i]
		}
		if curve != nil {
			y := curve.New()
			y.ScalarBaseMult(p.Value)
			cfg.VerificationKeys = append(cfg.VerificationKeys, y.Marshal())
		}
	}
	cfg.Fingerprint = cfg.PublicKey.Fingerprint()
	log.Infow("election key generated",
		"electionId", electionID.String(),
		"scheme", string(scheme),
		"threshold", t,
		"participants", n,
		"fingerprint", cfg.Fingerprint.String())
	return cfg, shares, nil
}

// Field returns the Shamir field modulus.
func (cfg *ElectionKeyConfig) Field() *big.Int {
	return cfg.FieldModulus.MathBigInt()
}

// VerificationKey returns Y_i = d_i·G for the share with the given index.
func (cfg *ElectionKeyConfig) VerificationKey(index int) (ecc.Point, error) {
	if cfg.Scheme != homomorphic.SchemeElGamal {
		return nil, fmt.Errorf("verification keys are only defined for elgamal")
	}
	if index < 1 || index > len(cfg.VerificationKeys) {
		return nil, fmt.Errorf("%w: no verification key for index %d", types.ErrInvalidShareFormat, index)
	}
	y := curves.New(cfg.PublicKey.ElGamal.Curve)
	if err := y.Unmarshal(cfg.VerificationKeys[index-1]); err != nil {
		return nil, err
	}
	return y, nil
}

// Validate checks the internal consistency of a configuration loaded from
// an untrusted source.
func (cfg *ElectionKeyConfig) Validate() error {
	if cfg.Participants < 1 || cfg.Threshold < 1 || cfg.Threshold > cfg.Participants {
		return fmt.Errorf("%w: t=%d n=%d", types.ErrInvalidThreshold, cfg.Threshold, cfg.Participants)
	}
	if err := cfg.PublicKey.Validate(); err != nil {
		return err
	}
	if cfg.PublicKey.Scheme != cfg.Scheme {
		return fmt.Errorf("%w: scheme mismatch", types.ErrInvalidPublicKey)
	}
	if cfg.FieldModulus == nil || !arith.IsProbablePrime(cfg.Field()) {
		return fmt.Errorf("field modulus is not prime")
	}
	if cfg.Scheme == homomorphic.SchemeElGamal && len(cfg.VerificationKeys) != cfg.Participants {
		return fmt.Errorf("expected %d verification keys, got %d", cfg.Participants, len(cfg.VerificationKeys))
	}
	return nil
}
