package bn254

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestGroupLaw(t *testing.T) {
	c := qt.New(t)
	a, b := New(), New()
	a.ScalarBaseMult(big.NewInt(11))
	b.ScalarBaseMult(big.NewInt(31))
	sum := New()
	sum.Add(a, b)
	want := New()
	want.ScalarBaseMult(big.NewInt(42))
	c.Assert(sum.Equal(want), qt.IsTrue)
	c.Assert(sum.IsOnCurve(), qt.IsTrue)

	neg := New()
	neg.Neg(want)
	neg.Add(neg, want)
	c.Assert(neg.IsZero(), qt.IsTrue)

	g := New()
	g.SetGenerator()
	x, y := g.Point()
	c.Assert(x.Int64(), qt.Equals, int64(1))
	c.Assert(y.Int64(), qt.Equals, int64(2))
}

func TestEncodings(t *testing.T) {
	c := qt.New(t)
	p := New()
	p.ScalarBaseMult(big.NewInt(987654321))

	p2 := New()
	c.Assert(p2.Unmarshal(p.Marshal()), qt.IsNil)
	c.Assert(p2.Equal(p), qt.IsTrue)

	data, err := json.Marshal(p)
	c.Assert(err, qt.IsNil)
	p3 := &G1{}
	c.Assert(json.Unmarshal(data, p3), qt.IsNil)
	c.Assert(p3.Equal(p), qt.IsTrue)

	data, err = cbor.Marshal(p)
	c.Assert(err, qt.IsNil)
	p4 := &G1{}
	c.Assert(cbor.Unmarshal(data, p4), qt.IsNil)
	c.Assert(p4.Equal(p), qt.IsTrue)

	bad := &G1{}
	c.Assert(json.Unmarshal([]byte(`{"x":"1","y":"3"}`), bad), qt.Not(qt.IsNil))
}
