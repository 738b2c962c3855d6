package prime

import "rsaforge/internal/bignum"

// sieveLimit bounds the primes used for trial division.
const sieveLimit = 2000

var smallPrimes = primesBelow(sieveLimit)

// primesBelow returns every prime p < limit in ascending order.
func primesBelow(limit int) []uint32 {
	if limit < 3 {
		return nil
	}
	composite := make([]bool, limit)
	out := make([]uint32, 0, limit/8)
	for i := 2; i < limit; i++ {
		if composite[i] {
			continue
		}
		out = append(out, uint32(i)) //nolint:gosec // G115: i < limit, which fits the table
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	return out
}

type sieveVerdict uint8

const (
	sieveUnknown   sieveVerdict = iota // survived, needs Miller-Rabin
	sievePrime                         // n is itself a small prime
	sieveComposite                     // a small prime divides n
)

// trialDivide classifies n (n >= 2) against the small prime table.
func trialDivide(n bignum.Int) sieveVerdict {
	small, fits := n.Uint64()
	for _, p := range smallPrimes {
		if fits && small == uint64(p) {
			return sievePrime
		}
		rem, err := n.ModSmall(p)
		if err != nil {
			panic(err)
		}
		if rem == 0 {
			return sieveComposite
		}
	}
	return sieveUnknown
}
