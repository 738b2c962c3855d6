package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events of a key generation in memory.
// When a search fails or is interrupted the tail shows the candidates and
// stage spans that led up to it.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	total uint64 // events accepted since creation
	level Level
}

// NewRingTracer returns a ring holding up to capacity events; capacity <= 0
// uses RingSizeFor(0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = RingSizeFor(0)
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !passes(t.level, ev) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.buf[t.total%uint64(len(t.buf))] = stored
	t.total++
	t.mu.Unlock()
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped()
}

func (t *RingTracer) dropped() uint64 {
	if c := uint64(len(t.buf)); t.total > c {
		return t.total - c
	}
	return 0
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := uint64(len(t.buf))
	if t.total <= c {
		return append([]Event(nil), t.buf[:t.total]...)
	}
	head := t.total % c
	out := make([]Event, 0, c)
	out = append(out, t.buf[head:]...)
	return append(out, t.buf[:head]...)
}

// Dump writes the kept events to w. Text output starts with a comment line
// naming how many older events were dropped, when any were.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if dropped := t.Dropped(); dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "# %d earlier events dropped, raise --trace-ring-size to keep them\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
