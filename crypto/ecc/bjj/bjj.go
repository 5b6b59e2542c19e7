// Package bjj implements ecc.Point over BabyJubJub, the twisted Edwards
// curve embedded in the BN254 scalar field.
package bjj

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	babyjubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/fxamacker/cbor/v2"

	curve "github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
)

// CurveType is the identifier of this curve in curves.New.
const CurveType = "bjj"

// Params are the gnark-crypto BabyJubJub parameters.
var Params = babyjubjub.GetEdwardsCurve()

// BJJ is the affine representation of a BabyJubJub group element.
type BJJ struct {
	inner *babyjubjub.PointAffine
	lock  sync.Mutex
}

// New creates a new BJJ point set to the identity.
func New() curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.SetZero()
	return p
}

// New creates a new BJJ point set to the identity.
func (g *BJJ) New() curve.Point {
	return New()
}

func (g *BJJ) init() {
	if g.inner == nil {
		g.inner = new(babyjubjub.PointAffine)
		g.SetZero()
	}
}

func innerOf(p curve.Point) *babyjubjub.PointAffine {
	b := p.(*BJJ)
	b.init()
	return b.inner
}

// Order returns the order of the prime-order subgroup.
func (g *BJJ) Order() *big.Int {
	return new(big.Int).Set(&Params.Order)
}

// Add performs the addition of two points and stores the result in g.
func (g *BJJ) Add(a, b curve.Point) {
	g.init()
	g.inner.Add(innerOf(a), innerOf(b))
}

// SafeAdd performs the addition of two points with a lock.
func (g *BJJ) SafeAdd(a, b curve.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

// ScalarMult performs scalar multiplication of a point by a scalar. The
// scalar is reduced modulo the subgroup order.
func (g *BJJ) ScalarMult(a curve.Point, scalar *big.Int) {
	g.init()
	k := new(big.Int).Mod(scalar, &Params.Order)
	g.inner.ScalarMultiplication(innerOf(a), k)
}

// ScalarBaseMult performs scalar multiplication using the base point.
func (g *BJJ) ScalarBaseMult(scalar *big.Int) {
	g.SetGenerator()
	g.ScalarMult(g, scalar)
}

// Equal checks if the given point is equal to the current point.
func (g *BJJ) Equal(a curve.Point) bool {
	g.init()
	return g.inner.Equal(innerOf(a))
}

// Neg negates the given point and stores the result in g.
func (g *BJJ) Neg(a curve.Point) {
	g.init()
	g.inner.Neg(innerOf(a))
}

// SetZero sets the current point to the identity element (0, 1).
func (g *BJJ) SetZero() {
	if g.inner == nil {
		g.inner = new(babyjubjub.PointAffine)
	}
	g.inner.X.SetZero()
	g.inner.Y.SetOne()
}

// IsZero reports whether g is the identity element.
func (g *BJJ) IsZero() bool {
	g.init()
	return g.inner.IsZero()
}

// Set sets g to the value of another point.
func (g *BJJ) Set(a curve.Point) {
	g.init()
	g.inner.Set(innerOf(a))
}

// SetGenerator sets the point to the BabyJubJub generator.
func (g *BJJ) SetGenerator() {
	g.init()
	g.inner.Set(&Params.Base)
}

// IsOnCurve checks the curve equation and that the point is not of small
// order, i.e. it lies in the prime-order subgroup.
func (g *BJJ) IsOnCurve() bool {
	g.init()
	if !g.inner.IsOnCurve() {
		return false
	}
	var check babyjubjub.PointAffine
	check.ScalarMultiplication(g.inner, &Params.Order)
	return check.IsZero()
}

// String returns the decimal coordinates of the point.
func (g *BJJ) String() string {
	x, y := g.Point()
	return fmt.Sprintf("%s,%s", x.String(), y.String())
}

// Marshal serializes the point in compressed form.
func (g *BJJ) Marshal() []byte {
	g.init()
	return g.inner.Marshal()
}

// Unmarshal deserializes a compressed point.
func (g *BJJ) Unmarshal(buf []byte) error {
	g.init()
	if err := g.inner.Unmarshal(buf); err != nil {
		return err
	}
	if !g.IsOnCurve() {
		return fmt.Errorf("point not in the babyjubjub subgroup")
	}
	return nil
}

// MarshalJSON encodes the affine coordinates as decimal strings.
func (g *BJJ) MarshalJSON() ([]byte, error) {
	g.init()
	return json.Marshal(curve.NewPointEC(g))
}

// UnmarshalJSON decodes and validates the affine coordinates.
func (g *BJJ) UnmarshalJSON(buf []byte) error {
	points := &curve.PointEC{}
	if err := json.Unmarshal(buf, points); err != nil {
		return err
	}
	return g.setChecked(points)
}

// MarshalCBOR encodes the affine coordinates.
func (g *BJJ) MarshalCBOR() ([]byte, error) {
	g.init()
	return cbor.Marshal(curve.NewPointEC(g))
}

// UnmarshalCBOR decodes and validates the affine coordinates.
func (g *BJJ) UnmarshalCBOR(buf []byte) error {
	points := &curve.PointEC{}
	if err := cbor.Unmarshal(buf, points); err != nil {
		return err
	}
	return g.setChecked(points)
}

func (g *BJJ) setChecked(points *curve.PointEC) error {
	if points.X == nil || points.Y == nil {
		return fmt.Errorf("missing point coordinates")
	}
	g.init()
	g.inner.X.SetBigInt(points.X.MathBigInt())
	g.inner.Y.SetBigInt(points.Y.MathBigInt())
	if !g.IsOnCurve() {
		return fmt.Errorf("point not in the babyjubjub subgroup")
	}
	return nil
}

// Point returns the X and Y coordinates of the point.
func (g *BJJ) Point() (*big.Int, *big.Int) {
	g.init()
	x, y := new(big.Int), new(big.Int)
	g.inner.X.BigInt(x)
	g.inner.Y.BigInt(y)
	return x, y
}

// SetPoint returns a new point with the given coordinates.
func (g *BJJ) SetPoint(x, y *big.Int) curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.inner.X.SetBigInt(x)
	p.inner.Y.SetBigInt(y)
	return p
}

// Type returns CurveType.
func (g *BJJ) Type() string {
	return CurveType
}
