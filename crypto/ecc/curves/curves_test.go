package curves

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNew(t *testing.T) {
	c := qt.New(t)
	for _, ct := range Curves() {
		c.Assert(IsValid(ct), qt.IsTrue)
		p := New(ct)
		c.Assert(p.Type(), qt.Equals, ct)
		c.Assert(p.IsZero(), qt.IsTrue)
		p.ScalarBaseMult(big.NewInt(5))
		c.Assert(p.IsOnCurve(), qt.IsTrue)
	}
	c.Assert(IsValid("secp256k1"), qt.IsFalse)
	c.Assert(func() { New("secp256k1") }, qt.PanicMatches, "unsupported curve type: secp256k1")
}
