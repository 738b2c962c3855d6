// Package prime generates probable primes using trial division followed by
// Miller-Rabin testing with random bases.
package prime

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"strconv"

	"rsaforge/internal/bignum"
	"rsaforge/internal/trace"
)

// ErrBitsTooSmall is returned when a prime of fewer than 2 bits is requested.
var ErrBitsTooSmall = errors.New("prime bit length must be at least 2")

// Stats counts the work done by one GenerateProbablePrime call.
type Stats struct {
	Candidates   uint64 // candidates drawn
	SieveRejects uint64 // rejected by trial division
	MRRejects    uint64 // rejected by Miller-Rabin
}

// Observer receives a Stats snapshot after every candidate. It runs on the
// generating goroutine and must not block.
type Observer func(Stats)

// Generator produces probable primes. The zero value uses crypto/rand and
// DefaultRounds.
type Generator struct {
	Rand     io.Reader
	Rounds   int
	Observer Observer
}

// New returns a Generator reading from rand (crypto/rand when nil) through a
// LockedReader, so the generator may be shared between goroutines.
func New(rand io.Reader, rounds int) *Generator {
	if rand == nil {
		rand = crand.Reader
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	return &Generator{Rand: NewLockedReader(rand), Rounds: rounds}
}

func (g *Generator) reader() io.Reader {
	if g.Rand == nil {
		return crand.Reader
	}
	return g.Rand
}

func (g *Generator) rounds() int {
	if g.Rounds <= 0 {
		return DefaultRounds
	}
	return g.Rounds
}

// GenerateProbablePrime returns an odd probable prime with exactly bits
// significant bits. It retries until a candidate passes, ctx is done or the
// random source fails.
func (g *Generator) GenerateProbablePrime(ctx context.Context, bits int) (bignum.Int, error) {
	if bits < 2 {
		return bignum.Int{}, ErrBitsTooSmall
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePrime, "probable-prime", trace.CurrentSpan(ctx))
	span.WithExtra("bits", strconv.Itoa(bits))

	var st Stats
	for {
		if err := ctx.Err(); err != nil {
			span.End("cancelled")
			return bignum.Int{}, err
		}

		cand, err := RandomBits(g.reader(), bits)
		if err != nil {
			trace.Failure(tracer, "probable-prime", err, span.ID())
			span.End("random source failed")
			return bignum.Int{}, err
		}
		cand = cand.SetBit(bits-1, 1).SetBit(0, 1)
		st.Candidates++

		ok, sieved, err := isProbablePrime(cand, g.rounds(), g.reader())
		if err != nil {
			trace.Failure(tracer, "probable-prime", err, span.ID())
			span.End("random source failed")
			return bignum.Int{}, err
		}
		switch {
		case ok:
		case sieved:
			st.SieveRejects++
		default:
			st.MRRejects++
			trace.Point(tracer, trace.ScopeCandidate, "miller-rabin", "composite", span.ID())
		}
		if g.Observer != nil {
			g.Observer(st)
		}
		if ok {
			span.WithExtra("candidates", strconv.FormatUint(st.Candidates, 10))
			span.End(fmt.Sprintf("sieve=%d mr=%d", st.SieveRejects, st.MRRejects))
			return cand, nil
		}
	}
}
