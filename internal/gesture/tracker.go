// Package gesture turns raw pointer positions into scroll samples.
package gesture

import (
	"time"

	"github.com/san-kum/nestscroll/internal/scroll"
)

// DefaultWindow is how far back velocity estimation looks.
const DefaultWindow = 100 * time.Millisecond

type point struct {
	y  float64
	at time.Time
}

// Tracker follows one vertical drag at a time. Positions are in points with y
// growing downwards, so moving the pointer up yields a negative translation.
type Tracker struct {
	window  time.Duration
	startY  float64
	active  bool
	history []point
}

func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{window: window, history: make([]point, 0, 16)}
}

func (t *Tracker) Active() bool { return t.active }

// Begin starts a drag at y, abandoning any drag in progress.
func (t *Tracker) Begin(y float64, at time.Time) scroll.Sample {
	t.active = true
	t.startY = y
	t.history = append(t.history[:0], point{y: y, at: at})
	return scroll.Sample{Phase: scroll.PhaseBegin}
}

// Move records a pointer position. ok is false when no drag is active.
func (t *Tracker) Move(y float64, at time.Time) (s scroll.Sample, ok bool) {
	return t.sample(scroll.PhaseChanged, y, at)
}

// End finishes the drag at y.
func (t *Tracker) End(y float64, at time.Time) (s scroll.Sample, ok bool) {
	s, ok = t.sample(scroll.PhaseEnded, y, at)
	t.active = false
	return s, ok
}

// Cancel aborts the drag at y. The sample still carries velocity.
func (t *Tracker) Cancel(y float64, at time.Time) (s scroll.Sample, ok bool) {
	s, ok = t.sample(scroll.PhaseCancelled, y, at)
	t.active = false
	return s, ok
}

func (t *Tracker) sample(phase scroll.Phase, y float64, at time.Time) (scroll.Sample, bool) {
	if !t.active {
		return scroll.Sample{}, false
	}
	t.record(y, at)
	return scroll.Sample{
		Phase:        phase,
		TranslationY: y - t.startY,
		VelocityY:    t.Velocity(),
	}, true
}

func (t *Tracker) record(y float64, at time.Time) {
	t.history = append(t.history, point{y: y, at: at})

	cutoff := at.Add(-t.window)
	drop := 0
	for drop < len(t.history)-2 && t.history[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		t.history = append(t.history[:0], t.history[drop:]...)
	}
}

// Velocity is the pointer speed over the trailing window in points per second.
func (t *Tracker) Velocity() float64 {
	if len(t.history) < 2 {
		return 0
	}
	first, last := t.history[0], t.history[len(t.history)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 {
		return 0
	}
	return (last.y - first.y) / dt
}
