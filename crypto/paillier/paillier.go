// Package paillier implements the Paillier cryptosystem with generator
// G = N+1. Ciphertexts are additively homomorphic: the product of two
// ciphertexts decrypts to the sum of their plaintexts.
package paillier

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// MinBits is the smallest modulus size accepted by GenerateKey.
const MinBits = 64

var (
	// ErrInvalidCiphertext is returned for values outside ℤ*_{N²}.
	ErrInvalidCiphertext = errors.New("invalid paillier ciphertext")
	// ErrFactorMismatch is returned when a candidate factor does not divide N.
	ErrFactorMismatch = errors.New("factor does not divide the modulus")

	one = big.NewInt(1)
)

// PublicKey is a Paillier public key (N, G).
type PublicKey struct {
	N *types.BigInt `json:"n" cbor:"0,keyasint"`
	G *types.BigInt `json:"g" cbor:"1,keyasint"`
}

// NewPublicKey returns the public key for modulus n with G = n+1.
func NewPublicKey(n *big.Int) *PublicKey {
	return &PublicKey{
		N: types.FromBig(n),
		G: types.FromBig(new(big.Int).Add(n, one)),
	}
}

// Validate checks the key before any arithmetic is done with it: N must be
// a positive odd composite and G must be N+1.
func (pk *PublicKey) Validate() error {
	if pk == nil || pk.N == nil || pk.G == nil {
		return fmt.Errorf("%w: missing paillier modulus", types.ErrInvalidPublicKey)
	}
	n := pk.N.MathBigInt()
	if n.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive paillier modulus", types.ErrInvalidPublicKey)
	}
	if n.Bit(0) == 0 {
		return fmt.Errorf("%w: even paillier modulus", types.ErrInvalidPublicKey)
	}
	if n.BitLen() < MinBits/2 || arith.IsProbablePrime(n) {
		return fmt.Errorf("%w: paillier modulus is not a product of two primes", types.ErrInvalidPublicKey)
	}
	if pk.G.MathBigInt().Cmp(new(big.Int).Add(n, one)) != 0 {
		return fmt.Errorf("%w: paillier generator must be N+1", types.ErrInvalidPublicKey)
	}
	return nil
}

// Equal returns true if pk and other share the same modulus and generator.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.N.Equal(other.N) && pk.G.Equal(other.G)
}

// N2 returns N².
func (pk *PublicKey) N2() *big.Int {
	n := pk.N.MathBigInt()
	return new(big.Int).Mul(n, n)
}

// Nonce returns a fresh ρ ∈ ℤₙˣ.
func (pk *PublicKey) Nonce() (*big.Int, error) {
	return arith.RandomUnit(pk.N.MathBigInt())
}

// Encrypt returns the encryption of m ∈ [0, N) with a fresh nonce.
func (pk *PublicKey) Encrypt(m *big.Int) (*Ciphertext, error) {
	nonce, err := pk.Nonce()
	if err != nil {
		return nil, err
	}
	defer arith.Wipe(nonce)
	return pk.EncryptWithNonce(m, nonce)
}

// EncryptWithNonce returns
//
//	ct = (1+N)ᵐ·ρᴺ = (1+m·N)·ρᴺ (mod N²)
func (pk *PublicKey) EncryptWithNonce(m, nonce *big.Int) (*Ciphertext, error) {
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	n := pk.N.MathBigInt()
	if m.Sign() < 0 || m.Cmp(n) >= 0 {
		return nil, fmt.Errorf("paillier plaintext out of range")
	}
	if nonce.Sign() <= 0 || new(big.Int).GCD(nil, nil, nonce, n).Cmp(one) != 0 {
		return nil, fmt.Errorf("paillier nonce is not a unit mod N")
	}
	n2 := pk.N2()
	rn, err := arith.ModExpSecret(nonce, n, n2)
	if err != nil {
		return nil, err
	}
	gm := new(big.Int).Mul(m, n)
	gm.Add(gm, one)
	c := gm.Mul(gm, rn)
	c.Mod(c, n2)
	return &Ciphertext{C: types.FromBig(c)}, nil
}

// Add returns the encryption of the sum of the plaintexts of a and b.
func (pk *PublicKey) Add(a, b *Ciphertext) (*Ciphertext, error) {
	if err := pk.ValidateCiphertext(a); err != nil {
		return nil, err
	}
	if err := pk.ValidateCiphertext(b); err != nil {
		return nil, err
	}
	n2 := pk.N2()
	c := new(big.Int).Mul(a.C.MathBigInt(), b.C.MathBigInt())
	return &Ciphertext{C: types.FromBig(c.Mod(c, n2))}, nil
}

// Zero returns the trivial encryption of 0 (the value 1), the neutral
// element of Add.
func (pk *PublicKey) Zero() *Ciphertext {
	return &Ciphertext{C: types.NewInt(1)}
}

// ValidateCiphertext checks that ct ∈ ℤ*_{N²}.
func (pk *PublicKey) ValidateCiphertext(ct *Ciphertext) error {
	if ct == nil || ct.C == nil {
		return ErrInvalidCiphertext
	}
	c := ct.C.MathBigInt()
	if c.Sign() <= 0 || c.Cmp(pk.N2()) >= 0 {
		return fmt.Errorf("%w: out of range", ErrInvalidCiphertext)
	}
	if new(big.Int).GCD(nil, nil, c, pk.N.MathBigInt()).Cmp(one) != 0 {
		return fmt.Errorf("%w: not a unit", ErrInvalidCiphertext)
	}
	return nil
}

// Ciphertext is a Paillier ciphertext, an element of ℤ*_{N²}.
type Ciphertext struct {
	C *types.BigInt `json:"c" cbor:"0,keyasint"`
}

// Equal reports whether both ciphertexts hold the same value.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.C.Equal(other.C)
}

// Clone returns a deep copy of ct.
func (ct *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{C: types.FromBig(ct.C.MathBigInt())}
}
