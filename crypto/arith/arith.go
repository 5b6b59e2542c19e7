// Package arith contains the big-integer helpers the cryptosystems are built
// on: modular exponentiation (public and constant-time secret exponents),
// modular inversion, primality and sampling of field elements from a
// cryptographically secure source.
package arith

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// primalityRounds is the number of Miller-Rabin rounds used by IsProbablePrime.
const primalityRounds = 20

var (
	// ErrNotInvertible is returned when an element has no inverse modulo m.
	ErrNotInvertible = errors.New("element is not invertible")
	// ErrInvalidModulus is returned for moduli that are nil or not positive.
	ErrInvalidModulus = errors.New("modulus must be positive")

	one = big.NewInt(1)
)

func checkModulus(mod *big.Int) error {
	if mod == nil || mod.Sign() <= 0 {
		return ErrInvalidModulus
	}
	return nil
}

// ModExp returns base^exp mod mod for public values. Negative exponents are
// supported when base is invertible modulo mod.
func ModExp(base, exp, mod *big.Int) (*big.Int, error) {
	if err := checkModulus(mod); err != nil {
		return nil, err
	}
	b := new(big.Int).Mod(base, mod)
	if exp.Sign() < 0 {
		inv, err := ModInverse(b, mod)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Exp(inv, new(big.Int).Neg(exp), mod), nil
	}
	return new(big.Int).Exp(b, exp, mod), nil
}

// ModExpSecret returns base^exp mod mod in time independent of the value of
// exp. It must be used whenever the exponent is key material. The exponent
// must be non-negative.
func ModExpSecret(base, exp, mod *big.Int) (*big.Int, error) {
	if err := checkModulus(mod); err != nil {
		return nil, err
	}
	if exp.Sign() < 0 {
		return nil, fmt.Errorf("negative secret exponent")
	}
	if mod.Bit(0) == 0 {
		// saferith's Montgomery ladder needs an odd modulus
		return new(big.Int).Exp(new(big.Int).Mod(base, mod), exp, mod), nil
	}
	m := saferith.ModulusFromNat(new(saferith.Nat).SetBig(mod, mod.BitLen()))
	b := new(saferith.Nat).SetBig(new(big.Int).Mod(base, mod), mod.BitLen())
	e := new(saferith.Nat).SetBig(exp, exp.BitLen())
	return new(saferith.Nat).Exp(b, e, m).Big(), nil
}

// ModInverse returns x⁻¹ mod mod, or ErrNotInvertible.
func ModInverse(x, mod *big.Int) (*big.Int, error) {
	if err := checkModulus(mod); err != nil {
		return nil, err
	}
	r := new(big.Int).Mod(x, mod)
	if r.Sign() == 0 {
		return nil, ErrNotInvertible
	}
	inv := new(big.Int).ModInverse(r, mod)
	if inv == nil {
		return nil, fmt.Errorf("%w: gcd(%d bits, modulus) != 1", ErrNotInvertible, r.BitLen())
	}
	return inv, nil
}

// IsProbablePrime reports whether x is prime with overwhelming probability.
func IsProbablePrime(x *big.Int) bool {
	if x == nil || x.Sign() <= 0 {
		return false
	}
	return x.ProbablyPrime(primalityRounds)
}

// RandomInt returns a uniform value in [0, max).
func RandomInt(max *big.Int) (*big.Int, error) {
	if err := checkModulus(max); err != nil {
		return nil, err
	}
	return rand.Int(rand.Reader, max)
}

// RandomNonZero returns a uniform value in [1, max).
func RandomNonZero(max *big.Int) (*big.Int, error) {
	if err := checkModulus(max); err != nil {
		return nil, err
	}
	if max.Cmp(one) <= 0 {
		return nil, fmt.Errorf("no non-zero element below %s", max)
	}
	r, err := rand.Int(rand.Reader, new(big.Int).Sub(max, one))
	if err != nil {
		return nil, err
	}
	return r.Add(r, one), nil
}

// RandomUnit returns a uniform element of ℤₙˣ.
func RandomUnit(n *big.Int) (*big.Int, error) {
	gcd := new(big.Int)
	for {
		r, err := RandomNonZero(n)
		if err != nil {
			return nil, err
		}
		if gcd.GCD(nil, nil, r, n).Cmp(one) == 0 {
			return r, nil
		}
	}
}

// RandomPrime returns a random prime of exactly bits bits.
func RandomPrime(bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("prime size too small: %d bits", bits)
	}
	return rand.Prime(rand.Reader, bits)
}

// PrimeAbove returns a random prime strictly greater than x, with extraBits
// more bits than x.
func PrimeAbove(x *big.Int, extraBits int) (*big.Int, error) {
	if extraBits < 1 {
		return nil, fmt.Errorf("extraBits must be positive")
	}
	return RandomPrime(x.BitLen() + extraBits)
}

// Wipe overwrites the limbs of x and sets it to zero. A nil x is ignored.
func Wipe(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}
