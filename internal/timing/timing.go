// Package timing measures the phases of one command line: parse, execute
// and suggest.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Phase names used by the CLI
const (
	PhaseLoad    = "load"
	PhaseCompile = "compile"
	PhaseParse   = "parse"
	PhaseExecute = "execute"
	PhaseSuggest = "suggest"
)

// Timer records how long each named phase took
type Timer struct {
	start  time.Time
	phases map[string]time.Duration
	order  []string // Track order of phases for consistent output
	now    func() time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return newTimer(time.Now)
}

func newTimer(now func() time.Time) *Timer {
	return &Timer{
		start:  now(),
		phases: make(map[string]time.Duration),
		now:    now,
	}
}

// Start begins phase and returns the function that ends it. Running the
// same phase twice adds up.
func (t *Timer) Start(phase string) func() time.Duration {
	begin := t.now()
	return func() time.Duration {
		d := t.now().Sub(begin)
		t.add(phase, d)
		return d
	}
}

// Time runs fn as phase.
func (t *Timer) Time(phase string, fn func()) time.Duration {
	stop := t.Start(phase)
	fn()
	return stop()
}

func (t *Timer) add(phase string, d time.Duration) {
	if _, seen := t.phases[phase]; !seen {
		t.order = append(t.order, phase)
	}
	t.phases[phase] += d
}

// Elapsed returns total elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Get returns the duration for a specific phase
func (t *Timer) Get(phase string) (time.Duration, bool) {
	d, ok := t.phases[phase]
	return d, ok
}

// Phases returns the phase names in the order they first ran
func (t *Timer) Phases() []string {
	return append([]string(nil), t.order...)
}

// Summary returns a formatted summary of all timings
func (t *Timer) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total: %s", millis(t.Elapsed()))

	if len(t.order) > 0 {
		sb.WriteString(" (")
		for i, phase := range t.order {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %s", phase, millis(t.phases[phase]))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}

// Reset resets the timer
func (t *Timer) Reset() {
	t.start = t.now()
	t.phases = make(map[string]time.Duration)
	t.order = nil
}
