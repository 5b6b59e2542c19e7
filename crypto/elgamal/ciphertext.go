package elgamal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/curves"
)

// sizes in bytes needed to serialize a Ciphertext
const (
	sizeCoord      = 32
	sizePoint      = 2 * sizeCoord
	SizeCiphertext = 2 * sizePoint
)

// Ciphertext represents an ElGamal encrypted message with homomorphic
// properties. It encapsulates the two points of a ciphertext.
type Ciphertext struct {
	C1 ecc.Point `json:"c1"`
	C2 ecc.Point `json:"c2"`
}

// NewCiphertext creates a new Ciphertext on the same curve as the given
// Point, set to the encryption of zero with zero randomness (the identity
// of ciphertext addition).
func NewCiphertext(curve ecc.Point) *Ciphertext {
	return &Ciphertext{C1: curve.New(), C2: curve.New()}
}

// Encrypt encrypts a message using the public key provided as elliptic
// curve point. The randomness k can be provided or nil to generate a new one.
func (z *Ciphertext) Encrypt(message *big.Int, publicKey ecc.Point, k *big.Int) (*Ciphertext, error) {
	var err error
	if k == nil {
		k, err = RandK(publicKey)
		if err != nil {
			return nil, fmt.Errorf("elgamal encryption failed: %w", err)
		}
	}
	c1, c2, err := EncryptWithK(publicKey, message, k)
	if err != nil {
		return nil, fmt.Errorf("elgamal encryption failed: %w", err)
	}
	z.C1 = c1
	z.C2 = c2
	return z, nil
}

// Add adds two Ciphertext and stores the result in z, which is also returned.
func (z *Ciphertext) Add(x, y *Ciphertext) *Ciphertext {
	z.C1.SafeAdd(x.C1, y.C1)
	z.C2.SafeAdd(x.C2, y.C2)
	return z
}

// Set copies x into z.
func (z *Ciphertext) Set(x *Ciphertext) *Ciphertext {
	z.C1 = x.C1.New()
	z.C1.Set(x.C1)
	z.C2 = x.C2.New()
	z.C2.Set(x.C2)
	return z
}

// Equal reports whether both ciphertexts hold the same points.
func (z *Ciphertext) Equal(x *Ciphertext) bool {
	return z.C1.Equal(x.C1) && z.C2.Equal(x.C2)
}

// IsValid reports whether both points are on the curve.
func (z *Ciphertext) IsValid() bool {
	return z != nil && z.C1 != nil && z.C2 != nil && z.C1.IsOnCurve() && z.C2.IsOnCurve()
}

// Serialize returns the canonical SizeCiphertext bytes of the ciphertext:
// C1.X, C1.Y, C2.X and C2.Y as little-endian 32-byte words. It feeds the
// encryption proof transcript.
func (z *Ciphertext) Serialize() []byte {
	var buf bytes.Buffer
	c1x, c1y := z.C1.Point()
	c2x, c2y := z.C2.Point()
	for _, bi := range []*big.Int{c1x, c1y, c2x, c2y} {
		buf.Write(arbo.BigIntToBytes(sizeCoord, bi))
	}
	return buf.Bytes()
}

// String returns a string representation of the Ciphertext.
func (z *Ciphertext) String() string {
	if z == nil || z.C1 == nil || z.C2 == nil {
		return "{C1: nil, C2: nil}"
	}
	return fmt.Sprintf("{C1: %s, C2: %s}", z.C1.String(), z.C2.String())
}

// ciphertextWire is the on-wire representation of a Ciphertext. The curve
// travels with the points so the decoder can allocate them.
type ciphertextWire struct {
	Curve string          `json:"curve" cbor:"0,keyasint"`
	C1    json.RawMessage `json:"c1" cbor:"-"`
	C2    json.RawMessage `json:"c2" cbor:"-"`
	C1b   cbor.RawMessage `json:"-" cbor:"1,keyasint"`
	C2b   cbor.RawMessage `json:"-" cbor:"2,keyasint"`
}

// MarshalJSON serializes the Ciphertext to JSON.
func (z *Ciphertext) MarshalJSON() ([]byte, error) {
	c1, err := z.C1.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal c1: %w", err)
	}
	c2, err := z.C2.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal c2: %w", err)
	}
	return json.Marshal(ciphertextWire{Curve: z.C1.Type(), C1: c1, C2: c2})
}

// UnmarshalJSON deserializes the Ciphertext from JSON.
func (z *Ciphertext) UnmarshalJSON(data []byte) error {
	var tmp ciphertextWire
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("failed to unmarshal ciphertext container: %w", err)
	}
	if !curves.IsValid(tmp.Curve) {
		return fmt.Errorf("unsupported curve %q", tmp.Curve)
	}
	z.C1, z.C2 = curves.New(tmp.Curve), curves.New(tmp.Curve)
	if err := z.C1.UnmarshalJSON(tmp.C1); err != nil {
		return fmt.Errorf("failed to unmarshal c1: %w", err)
	}
	if err := z.C2.UnmarshalJSON(tmp.C2); err != nil {
		return fmt.Errorf("failed to unmarshal c2: %w", err)
	}
	return nil
}

// MarshalCBOR serializes the Ciphertext to CBOR.
func (z *Ciphertext) MarshalCBOR() ([]byte, error) {
	c1, err := z.C1.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal c1: %w", err)
	}
	c2, err := z.C2.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal c2: %w", err)
	}
	return cbor.Marshal(ciphertextWire{Curve: z.C1.Type(), C1b: c1, C2b: c2})
}

// UnmarshalCBOR deserializes the Ciphertext from CBOR.
func (z *Ciphertext) UnmarshalCBOR(buf []byte) error {
	var tmp ciphertextWire
	if err := cbor.Unmarshal(buf, &tmp); err != nil {
		return fmt.Errorf("failed to unmarshal ciphertext container: %w", err)
	}
	if !curves.IsValid(tmp.Curve) {
		return fmt.Errorf("unsupported curve %q", tmp.Curve)
	}
	z.C1, z.C2 = curves.New(tmp.Curve), curves.New(tmp.Curve)
	if err := z.C1.UnmarshalCBOR(tmp.C1b); err != nil {
		return fmt.Errorf("failed to unmarshal c1: %w", err)
	}
	if err := z.C2.UnmarshalCBOR(tmp.C2b); err != nil {
		return fmt.Errorf("failed to unmarshal c2: %w", err)
	}
	return nil
}
