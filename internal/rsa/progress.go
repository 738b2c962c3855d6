package rsa

import (
	"sync"
	"time"
)

// Stage describes one step of key generation.
type Stage string

const (
	// StagePrimeP searches for the first prime factor.
	StagePrimeP Stage = "prime-p"
	// StagePrimeQ searches for the second prime factor.
	StagePrimeQ Stage = "prime-q"
	// StageExponent draws the public exponent.
	StageExponent Stage = "exponent"
	// StageInverse derives the private exponent.
	StageInverse Stage = "inverse"
)

// Stages lists every stage in the order Generate runs them sequentially.
var Stages = []Stage{StagePrimeP, StagePrimeQ, StageExponent, StageInverse}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the stage has not started.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished.
	StatusDone Status = "done"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for one stage.
type Event struct {
	Stage      Stage
	Status     Status
	Candidates uint64 // candidates tried so far within the stage
	Err        error
	Elapsed    time.Duration
}

// ProgressSink consumes progress events. With Parallel generation OnEvent is
// called from several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// Timings holds stage durations. It is safe for concurrent use; a nil
// *Timings records nothing and reports nothing.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t *Timings) Has(stage Stage) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// Sum returns the total across the provided stages.
func (t *Timings) Sum(stages ...Stage) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
