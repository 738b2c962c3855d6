package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		fail bool
	}{
		{in: "", want: LevelOff},
		{in: "off", want: LevelOff},
		{in: "Phase", want: LevelPhase},
		{in: " detail ", want: LevelDetail},
		{in: "DEBUG", want: LevelDebug},
		{in: "error", want: LevelError},
		{in: "verbose", fail: true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.fail {
			if err == nil {
				t.Fatalf("ParseLevel(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelError, ScopeCommand, false},
		{LevelPhase, ScopeKeygen, true},
		{LevelPhase, ScopePrime, false},
		{LevelDetail, ScopePrime, true},
		{LevelDetail, ScopeCandidate, false},
		{LevelDebug, ScopeCandidate, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamFiltersByScope(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopeKeygen, "keygen", 0)
	Point(tr, ScopeCandidate, "candidate", "composite", span.ID())
	inner := Begin(tr, ScopePrime, "prime-p", span.ID())
	inner.End("")
	span.WithExtra("bits", "1024").End("ok")

	out := buf.String()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected 2 lines, got:\n%s", out)
	}
	if strings.Contains(out, "candidate") || strings.Contains(out, "prime-p") {
		t.Fatalf("finer scopes leaked at phase level:\n%s", out)
	}
	if !strings.Contains(out, "{bits=1024}") {
		t.Fatalf("missing extra in:\n%s", out)
	}
}

func TestFailureBypassesScope(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatText)
	Failure(tr, "keygen", errors.New("entropy exhausted"), 0)
	if !strings.Contains(buf.String(), "entropy exhausted") {
		t.Fatalf("failure not emitted: %q", buf.String())
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Begin(tr, ScopePrime, "prime-q", 7).End("found")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Kind != "end" || ev.Scope != "prime" || ev.ParentID != 7 || ev.Detail != "found" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := 0; i < 5; i++ {
		Point(ring, ScopeCandidate, "c", string(rune('a'+i)), 0)
	}
	got := ring.Snapshot()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"c", "d", "e"} {
		if got[i].Detail != want {
			t.Fatalf("snapshot[%d] = %q, want %q", i, got[i].Detail, want)
		}
		if i > 0 && got[i].Seq <= got[i-1].Seq {
			t.Fatalf("snapshot not in sequence order")
		}
	}
	if ring.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", ring.Dropped())
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "# 2 earlier events dropped") {
		t.Fatalf("dump:\n%s", buf.String())
	}

	buf.Reset()
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 || strings.Contains(buf.String(), "#") {
		t.Fatalf("ndjson dump:\n%s", buf.String())
	}
}

func TestRingBeforeWrap(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	Point(ring, ScopeKeygen, "exponent", "", 0)
	Point(ring, ScopeCandidate, "miller-rabin", "composite", 0)
	if got := ring.Snapshot(); len(got) != 1 || got[0].Name != "exponent" {
		t.Fatalf("snapshot = %+v", got)
	}
	if ring.Dropped() != 0 {
		t.Fatalf("Dropped() = %d", ring.Dropped())
	}
}

func TestRingSizeFor(t *testing.T) {
	cases := []struct {
		bits int
		want int
	}{
		{0, minRingSize},
		{-5, minRingSize},
		{64, minRingSize},
		{2048, 4*710 + ringSlack},
		{1 << 20, maxRingSize},
	}
	for _, tc := range cases {
		if got := RingSizeFor(tc.bits); got != tc.want {
			t.Fatalf("RingSizeFor(%d) = %d, want %d", tc.bits, got, tc.want)
		}
	}
	if len(NewRingTracer(0, LevelDebug).buf) != minRingSize {
		t.Fatalf("default ring capacity")
	}
}

func TestNewBuildsModes(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeRing, KeyBits: 2048})
	if err != nil {
		t.Fatal(err)
	}
	ring, ok := tr.(*RingTracer)
	if !ok || len(ring.buf) != RingSizeFor(2048) {
		t.Fatalf("ring mode built %T", tr)
	}

	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	m, ok := tr.(*MultiTracer)
	if !ok || m.Ring() == nil || len(m.Ring().buf) != 10 {
		t.Fatalf("both mode built %T", tr)
	}

	tr, err = New(Config{Level: LevelPhase, Output: &buf, OutputPath: "keygen.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	if st, ok := tr.(*StreamTracer); !ok || st.format != FormatNDJSON {
		t.Fatalf("stream mode built %T", tr)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]StorageMode{"": ModeStream, "Ring": ModeRing, " both ": ModeBoth} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("ParseMode(disk) succeeded")
	}
}

func TestMultiTracerCopiesEvents(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelDebug, FormatText)
	ring := NewRingTracer(8, LevelDebug)
	m := NewMultiTracer(LevelDebug, stream, ring)

	Point(m, ScopeKeygen, "exponent", "", 0)
	if m.Ring() != ring {
		t.Fatalf("Ring() did not return the ring tracer")
	}
	if len(ring.Snapshot()) != 1 || buf.Len() == 0 {
		t.Fatalf("event did not reach both tracers")
	}
}

func TestContextDefaults(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop from empty context")
	}
	if CurrentSpan(context.Background()) != 0 {
		t.Fatalf("expected zero span")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	span := Begin(FromContext(ctx), ScopeKeygen, "keygen", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("CurrentSpan = %d, want %d", CurrentSpan(ctx), span.ID())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	span := Begin(tr, ScopeCommand, "x", 0)
	if span.End("") != 0 {
		t.Fatalf("disabled span reported a duration")
	}
}
