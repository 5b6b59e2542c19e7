// Package bn254 implements ecc.Point over the G1 group of BN254.
package bn254

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"

	curve "github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
)

// CurveType is the identifier of this curve in curves.New.
const CurveType = "bn254"

// Generator is the affine G1 generator (1, 2).
var Generator bn254.G1Affine

func init() {
	_, _, Generator, _ = bn254.Generators()
}

// G1 is the affine representation of a G1 group element. The zero value is
// the point at infinity.
type G1 struct {
	inner *bn254.G1Affine
	lock  sync.Mutex
}

// New returns the point at infinity.
func New() curve.Point {
	return &G1{inner: new(bn254.G1Affine)}
}

func innerOf(p curve.Point) *bn254.G1Affine {
	g := p.(*G1)
	if g.inner == nil {
		g.inner = new(bn254.G1Affine)
	}
	return g.inner
}

func (g *G1) New() curve.Point {
	return New()
}

func (g *G1) Order() *big.Int {
	return fr.Modulus()
}

func (g *G1) Add(a, b curve.Point) {
	temp := new(bn254.G1Affine)
	temp.Add(innerOf(a), innerOf(b))
	*innerOf(g) = *temp
}

func (g *G1) SafeAdd(a, b curve.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

func (g *G1) ScalarMult(a curve.Point, scalar *big.Int) {
	temp := new(bn254.G1Affine)
	temp.ScalarMultiplication(innerOf(a), new(big.Int).Mod(scalar, fr.Modulus()))
	*innerOf(g) = *temp
}

func (g *G1) ScalarBaseMult(scalar *big.Int) {
	innerOf(g).ScalarMultiplicationBase(new(big.Int).Mod(scalar, fr.Modulus()))
}

func (g *G1) Marshal() []byte {
	return innerOf(g).Marshal()
}

func (g *G1) Unmarshal(buf []byte) error {
	_, err := innerOf(g).SetBytes(buf)
	return err
}

func (g *G1) MarshalJSON() ([]byte, error) {
	return json.Marshal(curve.NewPointEC(g))
}

func (g *G1) UnmarshalJSON(buf []byte) error {
	var coords curve.PointEC
	if err := json.Unmarshal(buf, &coords); err != nil {
		return err
	}
	return g.setChecked(&coords)
}

func (g *G1) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(curve.NewPointEC(g))
}

func (g *G1) UnmarshalCBOR(buf []byte) error {
	var coords curve.PointEC
	if err := cbor.Unmarshal(buf, &coords); err != nil {
		return err
	}
	return g.setChecked(&coords)
}

func (g *G1) setChecked(coords *curve.PointEC) error {
	if coords.X == nil || coords.Y == nil {
		return fmt.Errorf("missing point coordinates")
	}
	p := innerOf(g)
	p.X.SetBigInt(coords.X.MathBigInt())
	p.Y.SetBigInt(coords.Y.MathBigInt())
	if !g.IsOnCurve() {
		return fmt.Errorf("point not on bn254 G1")
	}
	return nil
}

func (g *G1) Equal(a curve.Point) bool {
	return innerOf(g).Equal(innerOf(a))
}

func (g *G1) Neg(a curve.Point) {
	innerOf(g).Neg(innerOf(a))
}

func (g *G1) SetZero() {
	p := innerOf(g)
	p.X.SetZero()
	p.Y.SetZero()
}

func (g *G1) IsZero() bool {
	return innerOf(g).IsInfinity()
}

func (g *G1) Set(a curve.Point) {
	innerOf(g).Set(innerOf(a))
}

func (g *G1) SetGenerator() {
	innerOf(g).Set(&Generator)
}

// IsOnCurve reports whether g is on the curve and in G1. The infinity point
// is accepted.
func (g *G1) IsOnCurve() bool {
	p := innerOf(g)
	return p.IsOnCurve() && p.IsInSubGroup()
}

func (g *G1) String() string {
	return fmt.Sprintf("%x", g.Marshal())
}

func (g *G1) Point() (*big.Int, *big.Int) {
	p := innerOf(g)
	return p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int))
}

func (g *G1) SetPoint(x, y *big.Int) curve.Point {
	p := &G1{inner: new(bn254.G1Affine)}
	p.inner.X.SetBigInt(x)
	p.inner.Y.SetBigInt(y)
	return p
}

func (g *G1) Type() string {
	return CurveType
}
