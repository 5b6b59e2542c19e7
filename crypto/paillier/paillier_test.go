package paillier

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"

	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

const testBits = 512

func TestEncryptDecrypt(t *testing.T) {
	c := qt.New(t)
	pk, sk, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)
	c.Assert(pk.Validate(), qt.IsNil)
	c.Assert(sk.P.Cmp(sk.Q) < 0, qt.IsTrue)

	for _, m := range []int64{0, 1, 42, 1 << 40} {
		ct, err := pk.Encrypt(big.NewInt(m))
		c.Assert(err, qt.IsNil)
		got, err := sk.Decrypt(ct)
		c.Assert(err, qt.IsNil)
		c.Assert(got.Int64(), qt.Equals, m)
	}

	_, err = pk.Encrypt(big.NewInt(-1))
	c.Assert(err, qt.ErrorMatches, "paillier plaintext out of range")
	_, err = pk.Encrypt(pk.N.MathBigInt())
	c.Assert(err, qt.ErrorMatches, "paillier plaintext out of range")
}

func TestHomomorphicAdd(t *testing.T) {
	c := qt.New(t)
	pk, sk, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)

	sum := pk.Zero()
	for i := 0; i < 5; i++ {
		ct, err := pk.Encrypt(big.NewInt(1))
		c.Assert(err, qt.IsNil)
		sum, err = pk.Add(sum, ct)
		c.Assert(err, qt.IsNil)
	}
	got, err := sk.Decrypt(sum)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Int64(), qt.Equals, int64(5))

	// the same plaintext encrypts to different ciphertexts
	a, err := pk.Encrypt(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	b, err := pk.Encrypt(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(a.Equal(b), qt.IsFalse)
}

func TestSecretKeyFromFactor(t *testing.T) {
	c := qt.New(t)
	pk, sk, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)

	rebuilt, err := SecretKeyFromFactor(pk, sk.P)
	c.Assert(err, qt.IsNil)
	c.Assert(rebuilt.Lambda.Cmp(sk.Lambda), qt.Equals, 0)
	c.Assert(rebuilt.Mu.Cmp(sk.Mu), qt.Equals, 0)

	// the larger factor works too
	rebuilt, err = SecretKeyFromFactor(pk, sk.Q)
	c.Assert(err, qt.IsNil)
	c.Assert(rebuilt.P.Cmp(sk.P), qt.Equals, 0)

	_, err = SecretKeyFromFactor(pk, new(big.Int).Add(sk.P, big.NewInt(2)))
	c.Assert(errors.Is(err, ErrFactorMismatch), qt.IsTrue)
	_, err = SecretKeyFromFactor(pk, big.NewInt(1))
	c.Assert(errors.Is(err, ErrFactorMismatch), qt.IsTrue)

	ct, err := pk.Encrypt(big.NewInt(9))
	c.Assert(err, qt.IsNil)
	sk.Wipe()
	c.Assert(sk.Lambda.Sign(), qt.Equals, 0)
	m, err := rebuilt.Decrypt(ct)
	c.Assert(err, qt.IsNil)
	c.Assert(m.Int64(), qt.Equals, int64(9))
}

func TestValidate(t *testing.T) {
	c := qt.New(t)
	pk, _, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)

	for _, bad := range []*PublicKey{
		nil,
		{N: nil, G: types.NewInt(2)},
		{N: types.NewInt(-15), G: types.NewInt(-14)},
		{N: types.FromBig(new(big.Int).Lsh(big.NewInt(1), 128)), G: types.NewInt(1)},
		{N: pk.N, G: types.NewInt(2)},
	} {
		c.Assert(errors.Is(bad.Validate(), types.ErrInvalidPublicKey), qt.IsTrue)
	}
	_, err = (&PublicKey{N: types.NewInt(16), G: types.NewInt(17)}).Encrypt(big.NewInt(1))
	c.Assert(errors.Is(err, types.ErrInvalidPublicKey), qt.IsTrue)
}

func TestValidateCiphertext(t *testing.T) {
	c := qt.New(t)
	pk, _, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)
	c.Assert(errors.Is(pk.ValidateCiphertext(nil), ErrInvalidCiphertext), qt.IsTrue)
	c.Assert(errors.Is(pk.ValidateCiphertext(&Ciphertext{C: types.NewInt(0)}), ErrInvalidCiphertext), qt.IsTrue)
	c.Assert(errors.Is(pk.ValidateCiphertext(&Ciphertext{C: types.FromBig(pk.N2())}), ErrInvalidCiphertext), qt.IsTrue)
	c.Assert(errors.Is(pk.ValidateCiphertext(&Ciphertext{C: pk.N}), ErrInvalidCiphertext), qt.IsTrue)
}

func TestEncoding(t *testing.T) {
	c := qt.New(t)
	pk, _, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)
	ct, err := pk.Encrypt(big.NewInt(3))
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(pk)
	c.Assert(err, qt.IsNil)
	var pk2 PublicKey
	c.Assert(json.Unmarshal(data, &pk2), qt.IsNil)
	c.Assert(pk2.Equal(pk), qt.IsTrue)

	data, err = cbor.Marshal(ct)
	c.Assert(err, qt.IsNil)
	var ct2 Ciphertext
	c.Assert(cbor.Unmarshal(data, &ct2), qt.IsNil)
	c.Assert(ct2.Equal(ct), qt.IsTrue)
}

func TestEncryptionProof(t *testing.T) {
	c := qt.New(t)
	pk, sk, err := GenerateKey(testBits)
	c.Assert(err, qt.IsNil)
	one := big.NewInt(1)

	ct, proof, err := pk.EncryptWithProof(one)
	c.Assert(err, qt.IsNil)
	got, err := sk.Decrypt(ct)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Int64(), qt.Equals, int64(1))
	c.Assert(pk.VerifyEncryption(ct, one, proof), qt.IsTrue)

	// the proof is bound to the message
	c.Assert(pk.VerifyEncryption(ct, big.NewInt(5), proof), qt.IsFalse)

	// and to the ciphertext
	five, err := pk.Encrypt(big.NewInt(5))
	c.Assert(err, qt.IsNil)
	c.Assert(pk.VerifyEncryption(five, one, proof), qt.IsFalse)
	other, err := pk.Encrypt(one)
	c.Assert(err, qt.IsNil)
	c.Assert(pk.VerifyEncryption(other, one, proof), qt.IsFalse)

	// an encryption of 5 cannot be proven to hold 1
	five, proof5, err := pk.EncryptWithProof(big.NewInt(5))
	c.Assert(err, qt.IsNil)
	c.Assert(pk.VerifyEncryption(five, big.NewInt(5), proof5), qt.IsTrue)
	c.Assert(pk.VerifyEncryption(five, one, proof5), qt.IsFalse)

	tampered := &EncryptionProof{
		Commitment: proof.Commitment,
		Response:   types.FromBig(new(big.Int).Add(proof.Response.MathBigInt(), one)),
	}
	c.Assert(pk.VerifyEncryption(ct, one, tampered), qt.IsFalse)
	c.Assert(pk.VerifyEncryption(ct, one, nil), qt.IsFalse)
	c.Assert(pk.VerifyEncryption(ct, one, &EncryptionProof{}), qt.IsFalse)
}
