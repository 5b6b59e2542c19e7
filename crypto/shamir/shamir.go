// Package shamir implements Shamir secret sharing over a prime field and
// Lagrange interpolation at zero.
package shamir

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
)

var (
	// ErrZeroIndex is returned when a share index is congruent to zero.
	ErrZeroIndex = errors.New("share index cannot be zero")
	// ErrDuplicateIndex is returned when two shares have the same index.
	ErrDuplicateIndex = errors.New("duplicate share index")
	// ErrNoShares is returned when interpolating an empty set.
	ErrNoShares = errors.New("no shares to interpolate")
)

// Share is the evaluation of a polynomial at a non-zero index.
type Share struct {
	Index int
	Value *big.Int
}

// Polynomial is a polynomial over ℤ_field. Coefficients[0] is the secret.
type Polynomial struct {
	Coefficients []*big.Int
	field        *big.Int
}

// NewPolynomial returns a random polynomial of the given degree whose
// constant term is secret. The secret must already be reduced modulo field.
func NewPolynomial(secret *big.Int, degree int, field *big.Int) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("invalid polynomial degree %d", degree)
	}
	if field == nil || !arith.IsProbablePrime(field) {
		return nil, fmt.Errorf("field modulus must be prime")
	}
	if secret.Sign() < 0 || secret.Cmp(field) >= 0 {
		return nil, fmt.Errorf("secret out of field range")
	}
	p := &Polynomial{
		Coefficients: make([]*big.Int, degree+1),
		field:        field,
	}
	p.Coefficients[0] = new(big.Int).Set(secret)
	for i := 1; i <= degree; i++ {
		c, err := arith.RandomInt(field)
		if err != nil {
			return nil, err
		}
		p.Coefficients[i] = c
	}
	return p, nil
}

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.Coefficients) - 1
}

// Evaluate returns p(x) mod field using Horner's rule. Evaluating at zero
// would disclose the secret and is refused.
func (p *Polynomial) Evaluate(x *big.Int) (*big.Int, error) {
	if new(big.Int).Mod(x, p.field).Sign() == 0 {
		return nil, ErrZeroIndex
	}
	result := new(big.Int)
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.Coefficients[i])
		result.Mod(result, p.field)
	}
	return result, nil
}

// Wipe zeroes the coefficients of the polynomial.
func (p *Polynomial) Wipe() {
	for _, c := range p.Coefficients {
		arith.Wipe(c)
	}
}

// Split shares secret among n participants so that any t of them can
// recover it. Share indices are 1..n.
func Split(secret *big.Int, t, n int, field *big.Int) ([]*Share, error) {
	if n < 1 || t < 1 || t > n {
		return nil, fmt.Errorf("invalid threshold %d of %d", t, n)
	}
	if field.Cmp(big.NewInt(int64(n))) <= 0 {
		return nil, fmt.Errorf("field too small for %d shares", n)
	}
	poly, err := NewPolynomial(secret, t-1, field)
	if err != nil {
		return nil, err
	}
	defer poly.Wipe()
	shares := make([]*Share, n)
	for i := 1; i <= n; i++ {
		v, err := poly.Evaluate(big.NewInt(int64(i)))
		if err != nil {
			return nil, err
		}
		shares[i-1] = &Share{Index: i, Value: v}
	}
	return shares, nil
}

// LagrangeCoefficients returns, for every index, the Lagrange basis
// coefficient evaluated at x = 0 over ℤ_field:
//
//	λ_i = Π_{j≠i} x_j / (x_j - x_i)
func LagrangeCoefficients(indices []int, field *big.Int) (map[int]*big.Int, error) {
	if len(indices) == 0 {
		return nil, ErrNoShares
	}
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if new(big.Int).Mod(big.NewInt(int64(idx)), field).Sign() == 0 {
			return nil, ErrZeroIndex
		}
		if _, ok := seen[idx]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, idx)
		}
		seen[idx] = struct{}{}
	}
	coeffs := make(map[int]*big.Int, len(indices))
	for _, i := range indices {
		xi := big.NewInt(int64(i))
		num := big.NewInt(1)
		den := big.NewInt(1)
		for _, j := range indices {
			if i == j {
				continue
			}
			xj := big.NewInt(int64(j))
			num.Mul(num, xj)
			num.Mod(num, field)
			den.Mul(den, new(big.Int).Sub(xj, xi))
			den.Mod(den, field)
		}
		denInv, err := arith.ModInverse(den, field)
		if err != nil {
			return nil, fmt.Errorf("lagrange denominator for index %d: %w", i, err)
		}
		coeffs[i] = num.Mul(num, denInv).Mod(num, field)
	}
	return coeffs, nil
}

// Interpolate recovers p(0) from the given shares.
func Interpolate(shares []*Share, field *big.Int) (*big.Int, error) {
	if len(shares) == 0 {
		return nil, ErrNoShares
	}
	indices := make([]int, len(shares))
	for i, s := range shares {
		indices[i] = s.Index
	}
	coeffs, err := LagrangeCoefficients(indices, field)
	if err != nil {
		return nil, err
	}
	secret := new(big.Int)
	term := new(big.Int)
	for _, s := range shares {
		term.Mul(s.Value, coeffs[s.Index])
		secret.Add(secret, term)
		secret.Mod(secret, field)
	}
	arith.Wipe(term)
	return secret, nil
}
