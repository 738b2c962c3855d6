package rsa

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"rsaforge/internal/bignum"
	"rsaforge/internal/modarith"
	"rsaforge/internal/prime"
	"rsaforge/internal/trace"
)

// Options configures Generate.
type Options struct {
	Bits     int          // modulus size, at least MinBits
	Rounds   int          // Miller-Rabin rounds, prime.DefaultRounds when <= 0
	Rand     io.Reader    // secure random source, crypto/rand when nil
	Parallel bool         // search p and q concurrently
	Progress ProgressSink // optional
	Timings  *Timings     // optional, receives per-stage durations
}

// factors are the secrets Generate discards; tests use them to check phi.
type factors struct {
	p, q, phi bignum.Int
}

// Generate creates a key pair with an n of Bits or Bits-1 bits. It either
// returns a complete key or an error from ctx or the random source.
func Generate(ctx context.Context, opts Options) (*KeyPair, error) {
	k, _, err := generate(ctx, opts)
	return k, err
}

func generate(ctx context.Context, opts Options) (*KeyPair, factors, error) {
	if opts.Bits < MinBits {
		return nil, factors{}, ErrKeySizeTooSmall
	}
	if opts.Rand == nil {
		opts.Rand = crand.Reader
	}
	rand := prime.NewLockedReader(opts.Rand)

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeKeygen, "keygen", trace.CurrentSpan(ctx))
	span.WithExtra("bits", strconv.Itoa(opts.Bits))
	ctx = trace.WithSpan(ctx, span)

	g := &generation{opts: opts, rand: rand}
	k, f, err := g.run(ctx)
	if err != nil {
		trace.Failure(tracer, "keygen", err, span.ID())
		span.End("failed")
		return nil, factors{}, err
	}
	span.End("ok")
	return k, f, nil
}

type generation struct {
	opts Options
	rand io.Reader
}

func (g *generation) emit(evt Event) {
	if g.opts.Progress != nil {
		g.opts.Progress.OnEvent(evt)
	}
}

// stage brackets fn with progress events, a trace span and a timing entry.
func (g *generation) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeKeygen, string(stage), trace.CurrentSpan(ctx))
	start := time.Now()
	g.emit(Event{Stage: stage, Status: StatusWorking})

	err := fn(trace.WithSpan(ctx, span))

	elapsed := time.Since(start)
	g.opts.Timings.Set(stage, elapsed)
	if err != nil {
		g.emit(Event{Stage: stage, Status: StatusError, Err: err, Elapsed: elapsed})
		span.End(err.Error())
		return err
	}
	g.emit(Event{Stage: stage, Status: StatusDone, Elapsed: elapsed})
	span.End("")
	return nil
}

func (g *generation) findPrime(ctx context.Context, stage Stage, bits int, out *bignum.Int) error {
	return g.stage(ctx, stage, func(ctx context.Context) error {
		gen := &prime.Generator{
			Rand:   g.rand,
			Rounds: g.opts.Rounds,
			Observer: func(st prime.Stats) {
				g.emit(Event{Stage: stage, Status: StatusWorking, Candidates: st.Candidates})
			},
		}
		p, err := gen.GenerateProbablePrime(ctx, bits)
		if err != nil {
			return err
		}
		*out = p
		return nil
	})
}

func (g *generation) run(ctx context.Context) (*KeyPair, factors, error) {
	// q takes the extra bit when Bits is odd so n keeps Bits or Bits-1 bits.
	pBits := g.opts.Bits / 2
	qBits := g.opts.Bits - pBits

	for _, s := range Stages {
		g.emit(Event{Stage: s, Status: StatusQueued})
	}

	var p, q bignum.Int
	if g.opts.Parallel {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error { return g.findPrime(egCtx, StagePrimeP, pBits, &p) })
		eg.Go(func() error { return g.findPrime(egCtx, StagePrimeQ, qBits, &q) })
		if err := eg.Wait(); err != nil {
			return nil, factors{}, err
		}
	} else {
		if err := g.findPrime(ctx, StagePrimeP, pBits, &p); err != nil {
			return nil, factors{}, err
		}
		if err := g.findPrime(ctx, StagePrimeQ, qBits, &q); err != nil {
			return nil, factors{}, err
		}
	}
	for p.Equal(q) {
		trace.Point(trace.FromContext(ctx), trace.ScopeKeygen, "prime-q", "redraw: q == p", trace.CurrentSpan(ctx))
		if err := g.findPrime(ctx, StagePrimeQ, qBits, &q); err != nil {
			return nil, factors{}, err
		}
	}

	one := bignum.One()
	n := p.Mul(q)
	phi := p.Sub(one).Mul(q.Sub(one))

	var e, d bignum.Int
	err := g.stage(ctx, StageExponent, func(ctx context.Context) error {
		var err error
		e, err = g.drawExponent(ctx, phi)
		return err
	})
	if err != nil {
		return nil, factors{}, err
	}
	err = g.stage(ctx, StageInverse, func(context.Context) error {
		var err error
		d, err = modarith.ModInverse(e, phi)
		if err != nil {
			return fmt.Errorf("private exponent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, factors{}, err
	}

	return &KeyPair{N: n, E: e, D: d, Bits: g.opts.Bits}, factors{p: p, q: q, phi: phi}, nil
}

// drawExponent samples e uniformly from [0, 2^Bits) until 1 < e < phi and
// gcd(e, phi) = 1.
func (g *generation) drawExponent(ctx context.Context, phi bignum.Int) (bignum.Int, error) {
	one := bignum.One()
	var tries uint64
	for {
		if err := ctx.Err(); err != nil {
			return bignum.Int{}, err
		}
		e, err := prime.RandomBits(g.rand, g.opts.Bits)
		if err != nil {
			return bignum.Int{}, err
		}
		tries++
		g.emit(Event{Stage: StageExponent, Status: StatusWorking, Candidates: tries})
		if e.Cmp(one) <= 0 || e.Cmp(phi) >= 0 {
			continue
		}
		if modarith.GCD(e, phi).Equal(one) {
			return e, nil
		}
	}
}
