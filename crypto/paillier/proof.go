package paillier

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// EncryptionProof is a non-interactive proof that a ciphertext encrypts a
// known plaintext m: u = ct·(1+N)⁻ᵐ is an N-th residue modulo N², with the
// encryption nonce ρ as its root.
//
//	A = sᴺ (mod N²), e = H(N, ct, m, A), z = s·ρᵉ (mod N)
//
// The verifier checks zᴺ == A·uᵉ (mod N²).
type EncryptionProof struct {
	Commitment *types.BigInt `json:"commitment" cbor:"0,keyasint"`
	Response   *types.BigInt `json:"response" cbor:"1,keyasint"`
}

// EncryptWithProof encrypts m with a fresh nonce and proves that the
// ciphertext holds m.
func (pk *PublicKey) EncryptWithProof(m *big.Int) (*Ciphertext, *EncryptionProof, error) {
	nonce, err := pk.Nonce()
	if err != nil {
		return nil, nil, err
	}
	defer arith.Wipe(nonce)
	ct, err := pk.EncryptWithNonce(m, nonce)
	if err != nil {
		return nil, nil, err
	}
	proof, err := pk.proveEncryption(ct, m, nonce)
	if err != nil {
		return nil, nil, err
	}
	return ct, proof, nil
}

func (pk *PublicKey) proveEncryption(ct *Ciphertext, m, nonce *big.Int) (*EncryptionProof, error) {
	n := pk.N.MathBigInt()
	n2 := pk.N2()
	s, err := arith.RandomUnit(n)
	if err != nil {
		return nil, fmt.Errorf("encryption proof nonce: %w", err)
	}
	defer arith.Wipe(s)
	a, err := arith.ModExpSecret(s, n, n2)
	if err != nil {
		return nil, err
	}
	e := pk.encryptionChallenge(ct, m, a)
	re, err := arith.ModExpSecret(nonce, e, n)
	if err != nil {
		return nil, err
	}
	z := re.Mul(re, s)
	z.Mod(z, n)
	return &EncryptionProof{Commitment: types.FromBig(a), Response: types.FromBig(z)}, nil
}

// VerifyEncryption reports whether proof shows that ct encrypts m. Only
// public values are involved, so the checks use variable-time arithmetic.
func (pk *PublicKey) VerifyEncryption(ct *Ciphertext, m *big.Int, proof *EncryptionProof) bool {
	if proof == nil || proof.Commitment == nil || proof.Response == nil || m == nil {
		return false
	}
	if pk.Validate() != nil || pk.ValidateCiphertext(ct) != nil {
		return false
	}
	n := pk.N.MathBigInt()
	n2 := pk.N2()
	if m.Sign() < 0 || m.Cmp(n) >= 0 {
		return false
	}
	a := proof.Commitment.MathBigInt()
	if pk.ValidateCiphertext(&Ciphertext{C: proof.Commitment}) != nil {
		return false
	}
	z := proof.Response.MathBigInt()
	if z.Sign() <= 0 || z.Cmp(n) >= 0 || new(big.Int).GCD(nil, nil, z, n).Cmp(one) != 0 {
		return false
	}

	// u = ct·(1+m·N)⁻¹ (mod N²)
	gm := new(big.Int).Mul(m, n)
	gm.Add(gm, one)
	gmInv, err := arith.ModInverse(gm, n2)
	if err != nil {
		return false
	}
	u := gmInv.Mul(gmInv, ct.C.MathBigInt())
	u.Mod(u, n2)

	e := pk.encryptionChallenge(ct, m, a)
	lhs, err := arith.ModExp(z, n, n2)
	if err != nil {
		return false
	}
	rhs, err := arith.ModExp(u, e, n2)
	if err != nil {
		return false
	}
	rhs.Mul(rhs, a)
	rhs.Mod(rhs, n2)
	return lhs.Cmp(rhs) == 0
}

// encryptionChallenge is the Fiat-Shamir challenge, a 256-bit Keccak-256
// digest. Soundness needs it below the smallest prime factor of N, which
// holds for every key of at least 1024 bits.
func (pk *PublicKey) encryptionChallenge(ct *Ciphertext, m, a *big.Int) *big.Int {
	return new(big.Int).SetBytes(crypto.Keccak256(
		[]byte("paillier-encryption"),
		pk.N.MathBigInt().Bytes(),
		ct.C.MathBigInt().Bytes(),
		m.Bytes(),
		a.Bytes(),
	))
}
