// Package elgamal implements exponential ElGamal over a prime-order elliptic
// curve group. Messages are encoded as m·G, which makes ciphertexts
// additively homomorphic and limits decryption to small messages recovered
// with a baby-step giant-step search.
package elgamal

import (
	"fmt"
	"math"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
)

// RandK returns a random non-zero scalar of the group of curve.
func RandK(curve ecc.Point) (*big.Int, error) {
	k, err := arith.RandomNonZero(curve.Order())
	if err != nil {
		return nil, fmt.Errorf("failed to generate random k: %w", err)
	}
	return k, nil
}

// Encrypt function encrypts a message using the public key provided as
// elliptic curve point. It generates a random k and returns the two points
// that represent the encrypted message and the random k used to encrypt it.
func Encrypt(publicKey ecc.Point, msg *big.Int) (ecc.Point, ecc.Point, *big.Int, error) {
	k, err := RandK(publicKey)
	if err != nil {
		return nil, nil, nil, err
	}
	c1, c2, err := EncryptWithK(publicKey, msg, k)
	if err != nil {
		return nil, nil, nil, err
	}
	return c1, c2, k, nil
}

// EncryptWithK encrypts msg with the given randomness k:
//
//	C1 = k·G, C2 = msg·G + k·PK
func EncryptWithK(pubKey ecc.Point, msg, k *big.Int) (ecc.Point, ecc.Point, error) {
	if pubKey == nil || pubKey.IsZero() || !pubKey.IsOnCurve() {
		return nil, nil, fmt.Errorf("invalid elgamal public key")
	}
	if k == nil || new(big.Int).Mod(k, pubKey.Order()).Sign() == 0 {
		return nil, nil, fmt.Errorf("invalid encryption randomness")
	}
	m := new(big.Int).Mod(msg, pubKey.Order())
	c1 := pubKey.New()
	c1.ScalarBaseMult(k)
	s := pubKey.New()
	s.ScalarMult(pubKey, k)
	c2 := pubKey.New()
	c2.ScalarBaseMult(m)
	c2.Add(c2, s)
	return c1, c2, nil
}

// GenerateKey generates a new public/private ElGamal encryption key pair.
func GenerateKey(curve ecc.Point) (publicKey ecc.Point, privateKey *big.Int, err error) {
	d, err := arith.RandomNonZero(curve.Order())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key scalar: %w", err)
	}
	publicKey = curve.New()
	publicKey.ScalarBaseMult(d)
	return publicKey, d, nil
}

// Decrypt decrypts the given ciphertext (c1, c2) using the private key.
// It returns the point M = c2 - d·c1 and its discrete log, searched in
// [0, maxMessage].
func Decrypt(publicKey ecc.Point, privateKey *big.Int, c1, c2 ecc.Point, maxMessage uint64) (M ecc.Point, message *big.Int, err error) {
	dC1 := c2.New()
	dC1.ScalarMult(c1, privateKey)
	dC1.Neg(dC1)

	M = c2.New()
	M.Add(c2, dC1)

	G := publicKey.New()
	G.SetGenerator()
	message, err = BabyStepGiantStepECC(M, G, maxMessage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find discrete log: %w", err)
	}
	return M, message, nil
}

// BabyStepGiantStepECC solves M = x·G for x in [0, maxMessage].
func BabyStepGiantStepECC(M, G ecc.Point, maxMessage uint64) (*big.Int, error) {
	mSqrt := uint64(math.Sqrt(float64(maxMessage))) + 1

	babySteps := make(map[string]uint64, mSqrt)
	babyStep := M.New()
	babyStep.SetZero()
	for j := uint64(0); j < mSqrt; j++ {
		babySteps[string(babyStep.Marshal())] = j
		babyStep.Add(babyStep, G)
	}

	// c = mSqrt·(-G)
	c := M.New()
	c.ScalarMult(G, new(big.Int).SetUint64(mSqrt))
	c.Neg(c)

	giantStep := M.New()
	giantStep.Set(M)
	for i := uint64(0); i <= mSqrt; i++ {
		if j, found := babySteps[string(giantStep.Marshal())]; found {
			x := i*mSqrt + j
			if x > maxMessage {
				break
			}
			return new(big.Int).SetUint64(x), nil
		}
		giantStep.Add(giantStep, c)
	}
	return nil, fmt.Errorf("discrete logarithm not found in [0, %d]", maxMessage)
}

// CheckK reports whether c1 == k·G, i.e. whether k was the randomness used
// to produce a ciphertext with first component c1.
func CheckK(c1 ecc.Point, k *big.Int) bool {
	check := c1.New()
	check.ScalarBaseMult(k)
	return check.Equal(c1)
}
