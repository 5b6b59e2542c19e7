// Package homomorphic wraps the supported additively homomorphic
// cryptosystems behind tagged key and ciphertext types. Every value carries
// its Scheme and is validated at the boundary, before any arithmetic.
package homomorphic

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fxamacker/cbor/v2"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/elgamal"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/paillier"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Scheme identifies a cryptosystem.
type Scheme string

const (
	SchemePaillier Scheme = "paillier"
	SchemeElGamal  Scheme = "elgamal"
)

// Valid reports whether s is a supported scheme.
func (s Scheme) Valid() bool {
	return s == SchemePaillier || s == SchemeElGamal
}

// ElGamalPublicKey is a curve point together with its curve identifier.
type ElGamalPublicKey struct {
	Curve string
	Point ecc.Point
}

type elgamalKeyWire struct {
	Curve string          `json:"curve" cbor:"0,keyasint"`
	Point json.RawMessage `json:"point" cbor:"-"`
	Raw   []byte          `json:"-" cbor:"1,keyasint"`
}

func (k *ElGamalPublicKey) MarshalJSON() ([]byte, error) {
	point, err := k.Point.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(elgamalKeyWire{Curve: k.Curve, Point: point})
}

func (k *ElGamalPublicKey) UnmarshalJSON(data []byte) error {
	var w elgamalKeyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !curves.IsValid(w.Curve) {
		return fmt.Errorf("unsupported curve %q", w.Curve)
	}
	k.Curve = w.Curve
	k.Point = curves.New(w.Curve)
	return k.Point.UnmarshalJSON(w.Point)
}

func (k *ElGamalPublicKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(elgamalKeyWire{Curve: k.Curve, Raw: k.Point.Marshal()})
}

func (k *ElGamalPublicKey) UnmarshalCBOR(data []byte) error {
	var w elgamalKeyWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	if !curves.IsValid(w.Curve) {
		return fmt.Errorf("unsupported curve %q", w.Curve)
	}
	k.Curve = w.Curve
	k.Point = curves.New(w.Curve)
	return k.Point.Unmarshal(w.Raw)
}

// PublicKey is a tagged public key. Exactly one of Paillier or ElGamal is
// set, matching Scheme.
type PublicKey struct {
	Scheme   Scheme              `json:"scheme" cbor:"0,keyasint"`
	Paillier *paillier.PublicKey `json:"paillier,omitempty" cbor:"1,keyasint,omitempty"`
	ElGamal  *ElGamalPublicKey   `json:"elgamal,omitempty" cbor:"2,keyasint,omitempty"`
}

// NewPaillierPublicKey wraps a Paillier public key.
func NewPaillierPublicKey(pk *paillier.PublicKey) *PublicKey {
	return &PublicKey{Scheme: SchemePaillier, Paillier: pk}
}

// NewElGamalPublicKey wraps an ElGamal public key point.
func NewElGamalPublicKey(point ecc.Point) *PublicKey {
	return &PublicKey{Scheme: SchemeElGamal, ElGamal: &ElGamalPublicKey{Curve: point.Type(), Point: point}}
}

// ParsePaillierPublicKey builds a Paillier key from decimal strings,
// rejecting non-numeric input.
func ParsePaillierPublicKey(n, g string) (*PublicKey, error) {
	nInt, ok := new(big.Int).SetString(n, 10)
	if !ok {
		return nil, fmt.Errorf("%w: non-numeric modulus", types.ErrInvalidPublicKey)
	}
	gInt, ok := new(big.Int).SetString(g, 10)
	if !ok {
		return nil, fmt.Errorf("%w: non-numeric generator", types.ErrInvalidPublicKey)
	}
	pk := NewPaillierPublicKey(&paillier.PublicKey{N: types.FromBig(nInt), G: types.FromBig(gInt)})
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// UnmarshalJSON decodes a tagged key. Decoding failures are reported as
// types.ErrInvalidPublicKey; the key is validated afterwards.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	type plain PublicKey
	var tmp plain
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidPublicKey, err)
	}
	*pk = PublicKey(tmp)
	return pk.Validate()
}

// Validate rejects malformed keys: unknown scheme, missing or inconsistent
// fields, bad Paillier modulus or an ElGamal point off the curve.
func (pk *PublicKey) Validate() error {
	if pk == nil {
		return fmt.Errorf("%w: nil key", types.ErrInvalidPublicKey)
	}
	switch pk.Scheme {
	case SchemePaillier:
		if pk.Paillier == nil || pk.ElGamal != nil {
			return fmt.Errorf("%w: paillier key expected", types.ErrInvalidPublicKey)
		}
		return pk.Paillier.Validate()
	case SchemeElGamal:
		if pk.ElGamal == nil || pk.Paillier != nil || pk.ElGamal.Point == nil {
			return fmt.Errorf("%w: elgamal key expected", types.ErrInvalidPublicKey)
		}
		if !curves.IsValid(pk.ElGamal.Curve) || pk.ElGamal.Point.Type() != pk.ElGamal.Curve {
			return fmt.Errorf("%w: unsupported curve %q", types.ErrInvalidPublicKey, pk.ElGamal.Curve)
		}
		if pk.ElGamal.Point.IsZero() || !pk.ElGamal.Point.IsOnCurve() {
			return fmt.Errorf("%w: point off curve", types.ErrInvalidPublicKey)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown scheme %q", types.ErrInvalidPublicKey, pk.Scheme)
	}
}

// Equal reports whether both keys are the same.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == nil || other == nil || pk.Scheme != other.Scheme {
		return false
	}
	switch pk.Scheme {
	case SchemePaillier:
		return pk.Paillier.Equal(other.Paillier)
	case SchemeElGamal:
		return pk.ElGamal.Curve == other.ElGamal.Curve && pk.ElGamal.Point.Equal(other.ElGamal.Point)
	}
	return false
}

// Bytes returns the canonical encoding of the key.
func (pk *PublicKey) Bytes() []byte {
	buf := []byte(pk.Scheme)
	switch pk.Scheme {
	case SchemePaillier:
		buf = append(buf, pk.Paillier.N.MathBigInt().Bytes()...)
		buf = append(buf, pk.Paillier.G.MathBigInt().Bytes()...)
	case SchemeElGamal:
		buf = append(buf, []byte(pk.ElGamal.Curve)...)
		buf = append(buf, pk.ElGamal.Point.Marshal()...)
	}
	return buf
}

// Fingerprint returns the Keccak-256 hash of the canonical encoding.
func (pk *PublicKey) Fingerprint() types.HexBytes {
	return crypto.Keccak256(pk.Bytes())
}

// Encrypt encrypts value with fresh randomness.
func (pk *PublicKey) Encrypt(value *big.Int) (*Ciphertext, error) {
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	switch pk.Scheme {
	case SchemePaillier:
		ct, err := pk.Paillier.Encrypt(value)
		if err != nil {
			return nil, err
		}
		return &Ciphertext{Scheme: SchemePaillier, Paillier: ct}, nil
	default:
		ct, err := elgamal.NewCiphertext(pk.ElGamal.Point).Encrypt(value, pk.ElGamal.Point, nil)
		if err != nil {
			return nil, err
		}
		return &Ciphertext{Scheme: SchemeElGamal, ElGamal: ct}, nil
	}
}

// Zero returns the neutral element of Add, the encryption of 0 with no
// randomness.
func (pk *PublicKey) Zero() *Ciphertext {
	if pk.Scheme == SchemePaillier {
		return &Ciphertext{Scheme: SchemePaillier, Paillier: pk.Paillier.Zero()}
	}
	return &Ciphertext{Scheme: SchemeElGamal, ElGamal: elgamal.NewCiphertext(pk.ElGamal.Point)}
}

// ValidateCiphertext checks that ct belongs to this key's scheme and group.
func (pk *PublicKey) ValidateCiphertext(ct *Ciphertext) error {
	if ct == nil || ct.Scheme != pk.Scheme {
		return fmt.Errorf("ciphertext scheme does not match key scheme %s", pk.Scheme)
	}
	switch pk.Scheme {
	case SchemePaillier:
		return pk.Paillier.ValidateCiphertext(ct.Paillier)
	default:
		if !ct.ElGamal.IsValid() || ct.ElGamal.C1.Type() != pk.ElGamal.Curve {
			return fmt.Errorf("invalid elgamal ciphertext")
		}
		return nil
	}
}

// Add returns the homomorphic combination of a and b: a product modulo N²
// for Paillier, a point sum for ElGamal. Inputs are left untouched.
func (pk *PublicKey) Add(a, b *Ciphertext) (*Ciphertext, error) {
	if err := pk.ValidateCiphertext(a); err != nil {
		return nil, err
	}
	if err := pk.ValidateCiphertext(b); err != nil {
		return nil, err
	}
	switch pk.Scheme {
	case SchemePaillier:
		ct, err := pk.Paillier.Add(a.Paillier, b.Paillier)
		if err != nil {
			return nil, err
		}
		return &Ciphertext{Scheme: SchemePaillier, Paillier: ct}, nil
	default:
		ct := elgamal.NewCiphertext(pk.ElGamal.Point).Add(a.ElGamal, b.ElGamal)
		return &Ciphertext{Scheme: SchemeElGamal, ElGamal: ct}, nil
	}
}

// Ciphertext is a tagged ciphertext.
type Ciphertext struct {
	Scheme   Scheme               `json:"scheme" cbor:"0,keyasint"`
	Paillier *paillier.Ciphertext `json:"paillier,omitempty" cbor:"1,keyasint,omitempty"`
	ElGamal  *elgamal.Ciphertext  `json:"elgamal,omitempty" cbor:"2,keyasint,omitempty"`
}

// Equal reports whether both ciphertexts hold the same value.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	if ct == nil || other == nil || ct.Scheme != other.Scheme {
		return false
	}
	if ct.Scheme == SchemePaillier {
		return ct.Paillier.Equal(other.Paillier)
	}
	return ct.ElGamal.Equal(other.ElGamal)
}

// PrivateKey is a tagged private key.
type PrivateKey struct {
	Scheme   Scheme
	Paillier *paillier.SecretKey
	// ElGamal is the secret scalar d, with PK = d·G on Curve.
	ElGamal *big.Int
	Curve   string
}

// NewPaillierPrivateKey wraps a Paillier secret key.
func NewPaillierPrivateKey(sk *paillier.SecretKey) *PrivateKey {
	return &PrivateKey{Scheme: SchemePaillier, Paillier: sk}
}

// NewElGamalPrivateKey wraps an ElGamal secret scalar.
func NewElGamalPrivateKey(d *big.Int, curve string) *PrivateKey {
	return &PrivateKey{Scheme: SchemeElGamal, ElGamal: d, Curve: curve}
}

// Public derives the public key.
func (sk *PrivateKey) Public() *PublicKey {
	if sk.Scheme == SchemePaillier {
		return NewPaillierPublicKey(sk.Paillier.PublicKey)
	}
	p := curves.New(sk.Curve)
	p.ScalarBaseMult(sk.ElGamal)
	return NewElGamalPublicKey(p)
}

// Matches reports whether sk is the private key of pk.
func (sk *PrivateKey) Matches(pk *PublicKey) bool {
	if sk == nil || pk == nil || sk.Scheme != pk.Scheme {
		return false
	}
	if sk.Scheme == SchemeElGamal && sk.Curve != pk.ElGamal.Curve {
		return false
	}
	return sk.Public().Equal(pk)
}

// Decrypt returns the plaintext of ct. For ElGamal the plaintext is
// searched in [0, maxMessage]; Paillier ignores maxMessage. Failures wrap
// types.ErrDecryptionFailed.
func (sk *PrivateKey) Decrypt(ct *Ciphertext, maxMessage uint64) (*big.Int, error) {
	if ct == nil || ct.Scheme != sk.Scheme {
		return nil, fmt.Errorf("%w: scheme mismatch", types.ErrDecryptionFailed)
	}
	switch sk.Scheme {
	case SchemePaillier:
		m, err := sk.Paillier.Decrypt(ct.Paillier)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrDecryptionFailed, err)
		}
		return m, nil
	case SchemeElGamal:
		if !ct.ElGamal.IsValid() {
			return nil, fmt.Errorf("%w: invalid elgamal ciphertext", types.ErrDecryptionFailed)
		}
		G := curves.New(sk.Curve)
		_, m, err := elgamal.Decrypt(G, sk.ElGamal, ct.ElGamal.C1, ct.ElGamal.C2, maxMessage)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrDecryptionFailed, err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: unknown scheme %q", types.ErrDecryptionFailed, sk.Scheme)
}

// Wipe zeroes the secret material.
func (sk *PrivateKey) Wipe() {
	if sk == nil {
		return
	}
	if sk.Paillier != nil {
		sk.Paillier.Wipe()
	}
	arith.Wipe(sk.ElGamal)
}

// GenerateKey creates a fresh non-threshold key pair. bits is the Paillier
// modulus size; curve selects the ElGamal group.
func GenerateKey(scheme Scheme, bits int, curve string) (*PublicKey, *PrivateKey, error) {
	switch scheme {
	case SchemePaillier:
		pk, sk, err := paillier.GenerateKey(bits)
		if err != nil {
			return nil, nil, err
		}
		return NewPaillierPublicKey(pk), NewPaillierPrivateKey(sk), nil
	case SchemeElGamal:
		if !curves.IsValid(curve) {
			return nil, nil, fmt.Errorf("unsupported curve %q", curve)
		}
		point, d, err := elgamal.GenerateKey(curves.New(curve))
		if err != nil {
			return nil, nil, err
		}
		return NewElGamalPublicKey(point), NewElGamalPrivateKey(d, curve), nil
	}
	return nil, nil, fmt.Errorf("unknown scheme %q", scheme)
}
