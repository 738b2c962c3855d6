package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events from spans, points and heartbeats. Implementations
// are shared by concurrent prime searches and must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode selects where events go: written as they happen, kept in a
// bounded ring that is dumped when the command exits, or both.
type StorageMode string

const (
	ModeStream StorageMode = "stream"
	ModeRing   StorageMode = "ring"
	ModeBoth   StorageMode = "both"
)

// ParseMode reads a --trace-mode value. Empty means stream.
func ParseMode(s string) (StorageMode, error) {
	switch m := StorageMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeStream, nil
	case ModeStream, ModeRing, ModeBoth:
		return m, nil
	default:
		return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

const (
	minRingSize = 256
	maxRingSize = 1 << 16
	// spans and stage points emitted besides candidate verdicts
	ringSlack = 64
)

// RingSizeFor sizes the ring for one key generation with a modulus of bits
// bits. Finding a b-bit prime takes about b*ln(2)/2 odd candidates and keygen
// runs two searches of bits/2, so roughly 0.35*bits candidates leave at most
// one event each. The ring keeps four times that.
func RingSizeFor(bits int) int {
	if bits <= 0 {
		return minRingSize
	}
	expected := bits * 347 / 1000
	return min(max(4*expected+ringSlack, minRingSize), maxRingSize)
}

// Config describes the tracer built by New.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks NDJSON for .ndjson/.jsonl paths
	Output     io.Writer // overrides OutputPath
	OutputPath string    // "" or "-" is stderr
	RingSize   int       // 0 derives the size from KeyBits
	KeyBits    int       // modulus size of the key being generated, if known
}

func (cfg Config) ringSize() int {
	if cfg.RingSize > 0 {
		return cfg.RingSize
	}
	return RingSizeFor(cfg.KeyBits)
}

func (cfg Config) format() Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeStream
	}

	var stream, ring Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream = NewStreamTracer(w, cfg.Level, cfg.format())
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		ring = NewRingTracer(cfg.ringSize(), cfg.Level)
	}

	switch cfg.Mode {
	case ModeStream:
		return stream, nil
	case ModeRing:
		return ring, nil
	case ModeBoth:
		return NewMultiTracer(cfg.Level, stream, ring), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %q", cfg.Mode)
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// nopCloser keeps Close on the tracer from closing stderr.
type nopCloser struct{ io.Writer }

type (
	tracerKey struct{}
	spanKey   struct{}
)

// WithTracer attaches t to ctx; Generate and the prime searches find it there.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithSpan makes span the parent of spans begun under ctx, so a prime search
// nests under its keygen stage.
func WithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span.ID())
}

// CurrentSpan returns the parent span ID recorded in ctx, or 0 at the root.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(spanKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}
