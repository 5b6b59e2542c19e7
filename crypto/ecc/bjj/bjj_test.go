package bjj

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

// generateNonBasePoint returns a fixed point other than the generator.
func generateNonBasePoint() *BJJ {
	p := New()
	p.ScalarBaseMult(big.NewInt(123456789))
	return p.(*BJJ)
}

func TestGeneratorAndOrder(t *testing.T) {
	c := qt.New(t)
	g := New()
	g.SetGenerator()
	c.Assert(g.IsOnCurve(), qt.IsTrue)

	// order·G is the identity
	o := New()
	o.ScalarMult(g, g.Order())
	c.Assert(o.IsZero(), qt.IsTrue)
}

func TestZero(t *testing.T) {
	c := qt.New(t)
	z := New()
	c.Assert(z.IsZero(), qt.IsTrue)
	c.Assert(z.String(), qt.Equals, "0,1")

	p := generateNonBasePoint()
	sum := New()
	sum.Add(p, z)
	c.Assert(sum.Equal(p), qt.IsTrue)
}

func TestAddAndScalarMult(t *testing.T) {
	c := qt.New(t)
	a, b := New(), New()
	a.ScalarBaseMult(big.NewInt(123456789))
	b.ScalarBaseMult(big.NewInt(987654321))
	sum := New()
	sum.Add(a, b)

	expected := New()
	expected.ScalarBaseMult(big.NewInt(123456789 + 987654321))
	c.Assert(sum.Equal(expected), qt.IsTrue)

	// doubling
	dbl := New()
	dbl.Add(a, a)
	twice := New()
	twice.ScalarMult(a, big.NewInt(2))
	c.Assert(dbl.Equal(twice), qt.IsTrue)

	// negative scalars are reduced modulo the order
	neg := New()
	neg.ScalarBaseMult(big.NewInt(-123456789))
	back := New()
	back.Add(neg, a)
	c.Assert(back.IsZero(), qt.IsTrue)
}

func TestNeg(t *testing.T) {
	c := qt.New(t)
	p := generateNonBasePoint()
	n := New()
	n.Neg(p)
	sum := New()
	sum.Add(p, n)
	c.Assert(sum.IsZero(), qt.IsTrue)
}

func TestEqualAndSet(t *testing.T) {
	c := qt.New(t)
	p1 := generateNonBasePoint()
	p2 := New()
	p2.Set(p1)
	c.Assert(p1.Equal(p2), qt.IsTrue)
	p2.ScalarMult(p2, big.NewInt(2))
	c.Assert(p1.Equal(p2), qt.IsFalse)
}

func TestEncodings(t *testing.T) {
	c := qt.New(t)
	p := generateNonBasePoint()

	p2 := New()
	c.Assert(p2.Unmarshal(p.Marshal()), qt.IsNil)
	c.Assert(p2.Equal(p), qt.IsTrue)

	data, err := json.Marshal(p)
	c.Assert(err, qt.IsNil)
	p3 := &BJJ{}
	c.Assert(json.Unmarshal(data, p3), qt.IsNil)
	c.Assert(p3.Equal(p), qt.IsTrue)

	data, err = cbor.Marshal(p)
	c.Assert(err, qt.IsNil)
	p4 := &BJJ{}
	c.Assert(cbor.Unmarshal(data, p4), qt.IsNil)
	c.Assert(p4.Equal(p), qt.IsTrue)

	x, y := p.Point()
	c.Assert(p.SetPoint(x, y).Equal(p), qt.IsTrue)
}

func TestRejectsOffCurve(t *testing.T) {
	c := qt.New(t)
	p := &BJJ{}
	err := json.Unmarshal([]byte(`{"x":"1","y":"2"}`), p)
	c.Assert(err, qt.ErrorMatches, ".*not in the babyjubjub subgroup")
	c.Assert(New().SetPoint(big.NewInt(1), big.NewInt(2)).IsOnCurve(), qt.IsFalse)
}
