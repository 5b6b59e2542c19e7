// Package ecc defines the group element abstraction shared by the elliptic
// curve implementations used for ElGamal encryption.
package ecc

import (
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Point is an element of a prime-order elliptic curve group. Receivers hold
// the result of every arithmetic operation, so a.Add(a, b) is valid.
type Point interface {
	// New returns a new point on the same curve, set to the identity.
	New() Point
	// Order returns the order of the prime-order subgroup.
	Order() *big.Int
	// Add sets the receiver to a + b.
	Add(a, b Point)
	// SafeAdd is Add holding the receiver lock.
	SafeAdd(a, b Point)
	// ScalarMult sets the receiver to scalar·a.
	ScalarMult(a Point, scalar *big.Int)
	// ScalarBaseMult sets the receiver to scalar·G.
	ScalarBaseMult(scalar *big.Int)
	// Marshal returns the compressed encoding of the point.
	Marshal() []byte
	// Unmarshal decodes a compressed point, failing if it is not on the curve.
	Unmarshal(buf []byte) error
	MarshalJSON() ([]byte, error)
	UnmarshalJSON(buf []byte) error
	MarshalCBOR() ([]byte, error)
	UnmarshalCBOR(buf []byte) error
	// Equal reports whether both points are the same group element.
	Equal(a Point) bool
	// Neg sets the receiver to -a.
	Neg(a Point)
	// SetZero sets the receiver to the identity element.
	SetZero()
	// IsZero reports whether the receiver is the identity element.
	IsZero() bool
	// Set copies a into the receiver.
	Set(a Point)
	// SetGenerator sets the receiver to the group generator G.
	SetGenerator()
	// IsOnCurve reports whether the point satisfies the curve equation and
	// belongs to the prime-order subgroup.
	IsOnCurve() bool
	String() string
	// Point returns the affine coordinates.
	Point() (*big.Int, *big.Int)
	// SetPoint returns a new point with the given affine coordinates.
	SetPoint(x, y *big.Int) Point
	// Type returns the curve identifier understood by curves.New.
	Type() string
}

// PointEC is the JSON and CBOR representation of an affine point.
type PointEC struct {
	X *types.BigInt `json:"x" cbor:"0,keyasint"`
	Y *types.BigInt `json:"y" cbor:"1,keyasint"`
}

// NewPointEC returns the encodable coordinates of p.
func NewPointEC(p Point) *PointEC {
	x, y := p.Point()
	return &PointEC{X: types.FromBig(x), Y: types.FromBig(y)}
}
