// Package testkit holds invariant checks shared by tests of the arithmetic
// and key packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"rsaforge/internal/bignum"
	"rsaforge/internal/modarith"
)

// KeyParts are the values a generated key must relate correctly.
type KeyParts struct {
	N, E, D bignum.Int
	P, Q    bignum.Int
	Bits    int
}

// CheckKeyInvariants verifies:
// 1) n = p*q with p != q
// 2) 1 < e < phi and gcd(e, phi) = 1
// 3) e*d mod phi = 1
// 4) n has Bits or Bits-1 bits
func CheckKeyInvariants(k KeyParts) error {
	one := bignum.One()
	if k.P.Equal(k.Q) {
		return fmt.Errorf("p == q (%s)", k.P)
	}
	if !k.P.Mul(k.Q).Equal(k.N) {
		return fmt.Errorf("n != p*q")
	}

	phi := k.P.Sub(one).Mul(k.Q.Sub(one))
	if k.E.Cmp(one) <= 0 || k.E.Cmp(phi) >= 0 {
		return fmt.Errorf("e = %s outside (1, phi)", k.E)
	}
	if g := modarith.GCD(k.E, phi); !g.Equal(one) {
		return fmt.Errorf("gcd(e, phi) = %s", g)
	}
	ed, err := k.E.Mul(k.D).Mod(phi)
	if err != nil {
		return err
	}
	if !ed.Equal(one) {
		return fmt.Errorf("e*d mod phi = %s, want 1", ed)
	}

	if bl := k.N.BitLen(); bl != k.Bits && bl != k.Bits-1 {
		return fmt.Errorf("n has %d bits, want %d or %d", bl, k.Bits-1, k.Bits)
	}
	return nil
}

// PrimesBelow returns the primes below limit, for independent trial division.
func PrimesBelow(limit int) ([]uint32, error) {
	if limit < 3 {
		return nil, nil
	}
	composite := make([]bool, limit)
	var out []uint32
	for i := 2; i < limit; i++ {
		if composite[i] {
			continue
		}
		p, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("prime %d overflows: %w", i, err)
		}
		out = append(out, p)
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	return out, nil
}

// SmallFactor returns a divisor of x from divisors other than x itself, or 0.
func SmallFactor(x bignum.Int, divisors []uint32) (uint32, error) {
	for _, d := range divisors {
		if v, ok := x.Uint64(); ok && v == uint64(d) {
			continue
		}
		rem, err := x.ModSmall(d)
		if err != nil {
			return 0, err
		}
		if rem == 0 {
			return d, nil
		}
	}
	return 0, nil
}
