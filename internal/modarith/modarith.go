// Package modarith provides modular exponentiation, gcd and modular inverse
// over bignum.Int.
package modarith

import (
	"errors"

	"rsaforge/internal/bignum"
)

var (
	// ErrInvalidModulus indicates a modulus <= 0.
	ErrInvalidModulus = errors.New("invalid modulus")
	// ErrNoInverse indicates gcd(a, m) != 1, so a has no inverse modulo m.
	ErrNoInverse = errors.New("no modular inverse exists")
	// ErrNegativeExponent indicates a negative exponent passed to ModPow.
	ErrNegativeExponent = errors.New("negative exponent")
)

// ModPow returns base^exponent mod modulus in [0, modulus).
//
// The exponent is scanned from its most significant bit down: square on every
// bit, multiply by base on set bits, reduce after each product.
func ModPow(base, exponent, modulus bignum.Int) (bignum.Int, error) {
	if modulus.Sign() <= 0 {
		return bignum.Int{}, ErrInvalidModulus
	}
	if exponent.Sign() < 0 {
		return bignum.Int{}, ErrNegativeExponent
	}
	one := bignum.One()
	if modulus.Equal(one) {
		return bignum.Zero(), nil
	}

	b, err := base.Mod(modulus)
	if err != nil {
		return bignum.Int{}, err
	}
	result := one
	for i := exponent.BitLen() - 1; i >= 0; i-- {
		result, err = result.Sqr().Mod(modulus)
		if err != nil {
			return bignum.Int{}, err
		}
		if exponent.Bit(i) == 1 {
			result, err = result.Mul(b).Mod(modulus)
			if err != nil {
				return bignum.Int{}, err
			}
		}
	}
	return result, nil
}

// ExtendedGCD returns g = gcd(a, b) >= 0 and Bézout coefficients x, y with
// a*x + b*y = g. gcd(0, 0) is 0 with x = y = 0.
func ExtendedGCD(a, b bignum.Int) (g, x, y bignum.Int) {
	// Run on magnitudes, fix the coefficient signs at the end.
	oldR, r := a.Abs(), b.Abs()
	oldS, s := bignum.One(), bignum.Zero()
	oldT, t := bignum.Zero(), bignum.One()
	for !r.IsZero() {
		q, rem, err := oldR.DivMod(r)
		if err != nil {
			// r != 0 here, division cannot fail.
			panic(err)
		}
		oldR, r = r, rem
		oldS, s = s, oldS.Sub(q.Mul(s))
		oldT, t = t, oldT.Sub(q.Mul(t))
	}
	if a.Sign() < 0 {
		oldS = oldS.Neg()
	}
	if b.Sign() < 0 {
		oldT = oldT.Neg()
	}
	return oldR, oldS, oldT
}

// GCD returns gcd(a, b) >= 0.
func GCD(a, b bignum.Int) bignum.Int {
	x, y := a.Abs(), b.Abs()
	for !y.IsZero() {
		r, err := x.Mod(y)
		if err != nil {
			panic(err)
		}
		x, y = y, r
	}
	return x
}

// ModInverse returns x in [0, m) with a*x ≡ 1 (mod m).
func ModInverse(a, m bignum.Int) (bignum.Int, error) {
	if m.Sign() <= 0 {
		return bignum.Int{}, ErrInvalidModulus
	}
	if m.Equal(bignum.One()) {
		return bignum.Zero(), nil
	}
	ar, err := a.Mod(m)
	if err != nil {
		return bignum.Int{}, err
	}
	g, x, _ := ExtendedGCD(ar, m)
	if !g.Equal(bignum.One()) {
		return bignum.Int{}, ErrNoInverse
	}
	return x.Mod(m)
}
