package prime

import (
	"io"

	"rsaforge/internal/bignum"
	"rsaforge/internal/modarith"
)

// DefaultRounds is the number of Miller-Rabin rounds used when none is
// configured. A composite survives k rounds with probability at most 4^-k.
const DefaultRounds = 20

// witnessParams holds the n-1 = d*2^s decomposition shared by every round.
type witnessParams struct {
	n, nMinus1, d bignum.Int
	s             int
}

func newWitnessParams(n bignum.Int) witnessParams {
	nMinus1 := n.Sub(bignum.One())
	s := nMinus1.TrailingZeros()
	d, err := nMinus1.Rsh(s)
	if err != nil {
		panic(err)
	}
	return witnessParams{n: n, nMinus1: nMinus1, d: d, s: s}
}

// passes reports whether n is a strong probable prime to base a.
func (w witnessParams) passes(a bignum.Int) bool {
	x, err := modarith.ModPow(a, w.d, w.n)
	if err != nil {
		panic(err)
	}
	one := bignum.One()
	if x.Equal(one) || x.Equal(w.nMinus1) {
		return true
	}
	for i := 1; i < w.s; i++ {
		x, err = x.Sqr().Mod(w.n)
		if err != nil {
			panic(err)
		}
		if x.Equal(w.nMinus1) {
			return true
		}
		if x.Equal(one) {
			// Non-trivial square root of 1.
			return false
		}
	}
	return false
}

// MillerRabinRound runs one strong-pseudoprime test of odd n > 3 to base a.
// It returns false when a witnesses that n is composite.
func MillerRabinRound(n, a bignum.Int) bool {
	if n.Cmp(bignum.FromInt64(3)) <= 0 || n.IsEven() {
		return n.Equal(bignum.FromInt64(2)) || n.Equal(bignum.FromInt64(3))
	}
	return newWitnessParams(n).passes(a)
}

// IsProbablePrime reports whether n is prime with error probability at most
// 4^-rounds. Bases are drawn uniformly from [2, n-2] using rand.
func IsProbablePrime(n bignum.Int, rounds int, rand io.Reader) (bool, error) {
	ok, _, err := isProbablePrime(n, rounds, rand)
	return ok, err
}

// isProbablePrime also reports whether rejection happened in the sieve.
func isProbablePrime(n bignum.Int, rounds int, rand io.Reader) (prime, sieved bool, err error) {
	if n.Cmp(bignum.FromInt64(2)) < 0 {
		return false, true, nil
	}
	switch trialDivide(n) {
	case sievePrime:
		return true, false, nil
	case sieveComposite:
		return false, true, nil
	}

	if rounds < 1 {
		rounds = 1
	}
	w := newWitnessParams(n)
	lo := bignum.FromInt64(2)
	hi := n.Sub(lo)
	for range rounds {
		a, err := RandomRange(rand, lo, hi)
		if err != nil {
			return false, false, err
		}
		if !w.passes(a) {
			return false, false, nil
		}
	}
	return true, false, nil
}
