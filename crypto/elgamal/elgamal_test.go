package elgamal

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
)

func TestGenerateKey(t *testing.T) {
	for _, ct := range curves.Curves() {
		curve := curves.New(ct)
		publicKey, privateKey, err := GenerateKey(curve)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, privateKey.Sign() > 0, qt.IsTrue)

		testPoint := curve.New()
		testPoint.SetGenerator()
		testPoint.ScalarMult(testPoint, privateKey)
		qt.Assert(t, testPoint.Equal(publicKey), qt.IsTrue)
	}
}

func TestEncryptDecrypt(t *testing.T) {
	for _, ct := range curves.Curves() {
		curve := curves.New(ct)
		publicKey, privateKey, err := GenerateKey(curve)
		qt.Assert(t, err, qt.IsNil)

		maxMessage := uint64(1000)
		for _, m := range []uint64{0, 1, 42, 999, 1000} {
			msg := big.NewInt(int64(m))
			c1, c2, k, err := Encrypt(publicKey, msg)
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, CheckK(c1, k), qt.IsTrue)
			// the message is not modified
			qt.Assert(t, msg.Uint64(), qt.Equals, m)

			M, recovered, err := Decrypt(publicKey, privateKey, c1, c2, maxMessage)
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, recovered.Uint64(), qt.Equals, m)

			testPoint := curve.New()
			testPoint.ScalarBaseMult(msg)
			qt.Assert(t, testPoint.Equal(M), qt.IsTrue)
		}
	}
}

func TestDecryptOutOfRange(t *testing.T) {
	curve := curves.New(curves.DefaultCurve)
	publicKey, privateKey, err := GenerateKey(curve)
	qt.Assert(t, err, qt.IsNil)
	c1, c2, _, err := Encrypt(publicKey, big.NewInt(500))
	qt.Assert(t, err, qt.IsNil)
	_, _, err = Decrypt(publicKey, privateKey, c1, c2, 100)
	qt.Assert(t, err, qt.ErrorMatches, "failed to find discrete log: .*")
}

func TestEncryptFreshRandomness(t *testing.T) {
	curve := curves.New(curves.DefaultCurve)
	publicKey, _, err := GenerateKey(curve)
	qt.Assert(t, err, qt.IsNil)
	a, _, _, err := Encrypt(publicKey, big.NewInt(1))
	qt.Assert(t, err, qt.IsNil)
	b, _, _, err := Encrypt(publicKey, big.NewInt(1))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, a.Equal(b), qt.IsFalse)
}

func TestEncryptRejectsBadKey(t *testing.T) {
	curve := curves.New(curves.DefaultCurve)
	_, _, _, err := Encrypt(curve.New(), big.NewInt(1))
	qt.Assert(t, err, qt.ErrorMatches, "invalid elgamal public key")
	off := curve.SetPoint(big.NewInt(1), big.NewInt(2))
	_, _, _, err = Encrypt(off, big.NewInt(1))
	qt.Assert(t, err, qt.ErrorMatches, "invalid elgamal public key")
}

func TestDLEQ(t *testing.T) {
	c := qt.New(t)
	for _, ct := range curves.Curves() {
		curve := curves.New(ct)
		publicKey, x, err := GenerateKey(curve)
		c.Assert(err, qt.IsNil)
		H, _, _, err := Encrypt(publicKey, big.NewInt(3))
		c.Assert(err, qt.IsNil)
		D := curve.New()
		D.ScalarMult(H, x)

		proof, err := ProveDLEQ(x, H)
		c.Assert(err, qt.IsNil)
		c.Assert(VerifyDLEQ(proof, publicKey, H, D), qt.IsTrue)

		// a different share point fails
		other := curve.New()
		other.ScalarMult(H, new(big.Int).Add(x, big.NewInt(1)))
		c.Assert(VerifyDLEQ(proof, publicKey, H, other), qt.IsFalse)

		// tampered response fails
		bad := &DLEQProof{Challenge: proof.Challenge, Response: new(big.Int).Add(proof.Response, big.NewInt(1))}
		bad.Response.Mod(bad.Response, curve.Order())
		c.Assert(VerifyDLEQ(bad, publicKey, H, D), qt.IsFalse)
		c.Assert(VerifyDLEQ(nil, publicKey, H, D), qt.IsFalse)
	}
}

func TestEncryptionProof(t *testing.T) {
	c := qt.New(t)
	for _, ct := range curves.Curves() {
		curve := curves.New(ct)
		publicKey, _, err := GenerateKey(curve)
		c.Assert(err, qt.IsNil)
		one := big.NewInt(1)
		c1, c2, k, err := Encrypt(publicKey, one)
		c.Assert(err, qt.IsNil)
		cipher := &Ciphertext{C1: c1, C2: c2}

		proof, err := ProveEncryption(publicKey, cipher, one, k)
		c.Assert(err, qt.IsNil)
		c.Assert(VerifyEncryption(publicKey, cipher, one, proof), qt.IsTrue)

		// the same proof does not hold for another message
		c.Assert(VerifyEncryption(publicKey, cipher, big.NewInt(5), proof), qt.IsFalse)

		// nor for a ciphertext of another message under the same randomness
		f1, f2, err := EncryptWithK(publicKey, big.NewInt(5), k)
		c.Assert(err, qt.IsNil)
		five := &Ciphertext{C1: f1, C2: f2}
		c.Assert(VerifyEncryption(publicKey, five, one, proof), qt.IsFalse)

		// an honest proof for 5 is not a proof for 1
		proof5, err := ProveEncryption(publicKey, five, big.NewInt(5), k)
		c.Assert(err, qt.IsNil)
		c.Assert(VerifyEncryption(publicKey, five, big.NewInt(5), proof5), qt.IsTrue)
		c.Assert(VerifyEncryption(publicKey, five, one, proof5), qt.IsFalse)

		// a proof claiming 1 over an encryption of 5 does not verify
		lying, err := ProveEncryption(publicKey, five, one, k)
		c.Assert(err, qt.IsNil)
		c.Assert(VerifyEncryption(publicKey, five, one, lying), qt.IsFalse)

		_, err = ProveEncryption(publicKey, cipher, one, new(big.Int).Add(k, one))
		c.Assert(err, qt.ErrorMatches, "k is not the randomness.*")
		c.Assert(VerifyEncryption(publicKey, cipher, one, nil), qt.IsFalse)
	}
}
