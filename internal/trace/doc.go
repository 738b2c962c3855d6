// Package trace provides structured event tracing for rsaforge.
//
// Key generation can run for seconds at large sizes, dominated by rejected
// prime candidates. The tracer records where that time goes.
//
// # Usage
//
//	rsaforge keygen --bits 4096 --trace=- --trace-level=detail
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - RingTracer: bounded in-memory buffer, dumped on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Levels (off, error, phase, detail, debug) select which scopes are emitted.
// Scopes from coarse to fine are ScopeCommand (one CLI invocation),
// ScopeKeygen (key pair derivation steps), ScopePrime (one prime search) and
// ScopeCandidate (individual candidate verdicts).
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeKeygen, "keygen", 0)
//	defer span.End("")
package trace
