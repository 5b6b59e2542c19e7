package elgamal

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/bn254"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
)

func TestNewCiphertext(t *testing.T) {
	c := qt.New(t)
	cipher := NewCiphertext(curves.New(bn254.CurveType))
	c.Assert(cipher.C1.IsZero(), qt.IsTrue)
	c.Assert(cipher.C2.IsZero(), qt.IsTrue)
}

func TestCiphertextAddIsHomomorphic(t *testing.T) {
	c := qt.New(t)
	for _, ct := range curves.Curves() {
		curve := curves.New(ct)
		publicKey, privateKey, err := GenerateKey(curve)
		c.Assert(err, qt.IsNil)

		a, err := NewCiphertext(curve).Encrypt(big.NewInt(42), publicKey, nil)
		c.Assert(err, qt.IsNil)
		b, err := NewCiphertext(curve).Encrypt(big.NewInt(58), publicKey, big.NewInt(789))
		c.Assert(err, qt.IsNil)

		sum := NewCiphertext(curve).Add(a, b)
		_, m, err := Decrypt(publicKey, privateKey, sum.C1, sum.C2, 200)
		c.Assert(err, qt.IsNil)
		c.Assert(m.Int64(), qt.Equals, int64(100))

		// adding the identity ciphertext changes nothing
		same := NewCiphertext(curve).Add(sum, NewCiphertext(curve))
		c.Assert(same.Equal(sum), qt.IsTrue)
	}
}

func TestCiphertextEncodings(t *testing.T) {
	c := qt.New(t)
	for _, ct := range curves.Curves() {
		curve := curves.New(ct)
		publicKey, _, err := GenerateKey(curve)
		c.Assert(err, qt.IsNil)
		cipher, err := NewCiphertext(curve).Encrypt(big.NewInt(7), publicKey, nil)
		c.Assert(err, qt.IsNil)
		c.Assert(cipher.IsValid(), qt.IsTrue)

		data, err := json.Marshal(cipher)
		c.Assert(err, qt.IsNil)
		fromJSON := &Ciphertext{}
		c.Assert(json.Unmarshal(data, fromJSON), qt.IsNil)
		c.Assert(fromJSON.Equal(cipher), qt.IsTrue)

		data, err = cbor.Marshal(cipher)
		c.Assert(err, qt.IsNil)
		fromCBOR := &Ciphertext{}
		c.Assert(cbor.Unmarshal(data, fromCBOR), qt.IsNil)
		c.Assert(fromCBOR.Equal(cipher), qt.IsTrue)

		raw := cipher.Serialize()
		c.Assert(raw, qt.HasLen, SizeCiphertext)
		other, err := NewCiphertext(curve).Encrypt(big.NewInt(7), publicKey, nil)
		c.Assert(err, qt.IsNil)
		c.Assert(other.Serialize(), qt.Not(qt.DeepEquals), raw)
	}

	err := json.Unmarshal([]byte(`{"curve":"p256","c1":{},"c2":{}}`), &Ciphertext{})
	c.Assert(err, qt.ErrorMatches, `unsupported curve "p256"`)
}
