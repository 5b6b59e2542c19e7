// Package curves maps curve identifiers to ecc.Point implementations.
package curves

import (
	"fmt"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/bjj"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/ecc/bn254"
)

const (
	CurveTypeBabyJubJub = bjj.CurveType
	CurveTypeBN254      = bn254.CurveType

	// DefaultCurve is the curve used for ElGamal keys when none is given.
	DefaultCurve = CurveTypeBabyJubJub
)

// Curves returns the supported curve identifiers.
func Curves() []string {
	return []string{CurveTypeBabyJubJub, CurveTypeBN254}
}

// IsValid reports whether curveType is supported.
func IsValid(curveType string) bool {
	for _, c := range Curves() {
		if c == curveType {
			return true
		}
	}
	return false
}

// New creates a new point (the identity) of the given curve type. It
// panics if the type is not supported; use IsValid on untrusted input.
func New(curveType string) ecc.Point {
	switch curveType {
	case CurveTypeBabyJubJub:
		return bjj.New()
	case CurveTypeBN254:
		return bn254.New()
	default:
		panic(fmt.Sprintf("unsupported curve type: %s", curveType))
	}
}
