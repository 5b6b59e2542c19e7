package paillier

import (
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
)

// SecretKey holds the factorization of N and the derived decryption
// values λ = lcm(P-1, Q-1) and μ = λ⁻¹ mod N. P is the smaller factor.
type SecretKey struct {
	*PublicKey
	P, Q   *big.Int
	Lambda *big.Int
	Mu     *big.Int
}

// GenerateKey returns a key pair with a modulus of the given size.
func GenerateKey(bits int) (*PublicKey, *SecretKey, error) {
	if bits < MinBits || bits%2 != 0 {
		return nil, nil, fmt.Errorf("invalid paillier modulus size %d", bits)
	}
	for {
		p, err := arith.RandomPrime(bits / 2)
		if err != nil {
			return nil, nil, err
		}
		q, err := arith.RandomPrime(bits / 2)
		if err != nil {
			return nil, nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		sk, err := newSecretKey(p, q)
		if err != nil {
			// gcd(N, ϕ(N)) != 1, try other primes
			continue
		}
		return sk.PublicKey, sk, nil
	}
}

// SecretKeyFromFactor rebuilds the secret key of pk from one of the prime
// factors of N. It fails with ErrFactorMismatch if p does not divide N.
func SecretKeyFromFactor(pk *PublicKey, p *big.Int) (*SecretKey, error) {
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	n := pk.N.MathBigInt()
	if p == nil || p.Cmp(one) <= 0 || p.Cmp(n) >= 0 {
		return nil, ErrFactorMismatch
	}
	q, rem := new(big.Int).QuoRem(n, p, new(big.Int))
	if rem.Sign() != 0 {
		return nil, ErrFactorMismatch
	}
	sk, err := newSecretKey(new(big.Int).Set(p), q)
	if err != nil {
		return nil, err
	}
	if !sk.PublicKey.Equal(pk) {
		return nil, ErrFactorMismatch
	}
	return sk, nil
}

func newSecretKey(p, q *big.Int) (*SecretKey, error) {
	if p.Cmp(q) > 0 {
		p, q = q, p
	}
	n := new(big.Int).Mul(p, q)
	pm1 := new(big.Int).Sub(p, one)
	qm1 := new(big.Int).Sub(q, one)
	phi := new(big.Int).Mul(pm1, qm1)
	if new(big.Int).GCD(nil, nil, n, phi).Cmp(one) != 0 {
		return nil, fmt.Errorf("gcd(N, phi(N)) != 1")
	}
	gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
	lambda := new(big.Int).Quo(phi, gcd)
	mu, err := arith.ModInverse(lambda, n)
	if err != nil {
		return nil, err
	}
	return &SecretKey{
		PublicKey: NewPublicKey(n),
		P:         p,
		Q:         q,
		Lambda:    lambda,
		Mu:        mu,
	}, nil
}

// Decrypt returns m = L(c^λ mod N²)·μ mod N, with L(x) = (x-1)/N.
func (sk *SecretKey) Decrypt(ct *Ciphertext) (*big.Int, error) {
	if err := sk.ValidateCiphertext(ct); err != nil {
		return nil, err
	}
	n := sk.N.MathBigInt()
	x, err := arith.ModExpSecret(ct.C.MathBigInt(), sk.Lambda, sk.N2())
	if err != nil {
		return nil, err
	}
	x.Sub(x, one)
	x.Quo(x, n)
	x.Mul(x, sk.Mu)
	return x.Mod(x, n), nil
}

// Wipe zeroes the secret values.
func (sk *SecretKey) Wipe() {
	for _, v := range []*big.Int{sk.P, sk.Q, sk.Lambda, sk.Mu} {
		arith.Wipe(v)
	}
}
