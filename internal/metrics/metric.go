// Package metrics summarises coordinator activity, both as per-session
// values stored with recordings and as Prometheus collectors.
package metrics

import (
	"math"

	"github.com/san-kum/nestscroll/internal/scroll"
)

// Metric folds coordinator events into a single value.
type Metric interface {
	scroll.Observer
	Name() string
	Value() float64
	Reset()
}

// Travel is the total distance moved by both panels.
type Travel struct {
	prev    scroll.Offsets
	hasPrev bool
	total   float64
}

func NewTravel() *Travel { return &Travel{} }

func (m *Travel) Name() string { return "travel" }

func (m *Travel) Observe(e scroll.Event) {
	switch e.Kind {
	case scroll.EventGesture, scroll.EventTick:
		if m.hasPrev {
			m.total += math.Abs(e.Offsets.Outer-m.prev.Outer) + math.Abs(e.Offsets.Inner-m.prev.Inner)
		}
	case scroll.EventReset, scroll.EventBind, scroll.EventUnbind, scroll.EventResize:
	default:
		return
	}
	m.prev, m.hasPrev = e.Offsets, true
}

func (m *Travel) Value() float64 { return m.total }

func (m *Travel) Reset() { *m = Travel{} }

// Handoffs counts transfers of control to the inner panel.
type Handoffs struct {
	count int
}

func NewHandoffs() *Handoffs { return &Handoffs{} }

func (m *Handoffs) Name() string { return "handoffs" }

func (m *Handoffs) Observe(e scroll.Event) {
	if e.Kind == scroll.EventHandoff {
		m.count++
	}
}

func (m *Handoffs) Value() float64 { return float64(m.count) }
func (m *Handoffs) Reset()         { m.count = 0 }

// MomentumTime is the number of seconds spent decelerating.
type MomentumTime struct {
	seconds float64
}

func NewMomentumTime() *MomentumTime { return &MomentumTime{} }

func (m *MomentumTime) Name() string { return "momentum_seconds" }

func (m *MomentumTime) Observe(e scroll.Event) {
	if e.Kind == scroll.EventTick {
		m.seconds += e.Dt.Seconds()
	}
}

func (m *MomentumTime) Value() float64 { return m.seconds }
func (m *MomentumTime) Reset()         { m.seconds = 0 }

// MaxInner is the deepest inner offset reached.
type MaxInner struct {
	max float64
}

func NewMaxInner() *MaxInner { return &MaxInner{} }

func (m *MaxInner) Name() string { return "max_inner" }

func (m *MaxInner) Observe(e scroll.Event) {
	m.max = math.Max(m.max, e.Offsets.Inner)
}

func (m *MaxInner) Value() float64 { return m.max }
func (m *MaxInner) Reset()         { m.max = 0 }

func Defaults() []Metric {
	return []Metric{NewTravel(), NewHandoffs(), NewMomentumTime(), NewMaxInner()}
}

// Summary collects the current value of every metric by name.
func Summary(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
