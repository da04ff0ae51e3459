package scroll

import "time"

type EventKind int

const (
	// EventGesture follows every handled sample.
	EventGesture EventKind = iota
	// EventTick follows every momentum frame.
	EventTick
	// EventHandoff fires when the inner panel becomes the scroll target.
	EventHandoff
	// EventHandback fires when control returns to the outer panel.
	EventHandback
	EventMomentumStart
	EventMomentumStop
	// EventSkipped reports an update or momentum start that was a no-op.
	EventSkipped
	// EventReset follows ScrollTo.
	EventReset
	// EventBind and EventUnbind follow SetInnerPanel.
	EventBind
	EventUnbind
	// EventResize follows ResizeOuter and carries the new outer extents.
	EventResize
)

var eventNames = map[EventKind]string{
	EventGesture:       "gesture",
	EventTick:          "tick",
	EventHandoff:       "handoff",
	EventHandback:      "handback",
	EventMomentumStart: "momentum_start",
	EventMomentumStop:  "momentum_stop",
	EventSkipped:       "skipped",
	EventReset:         "reset",
	EventBind:          "bind",
	EventUnbind:        "unbind",
	EventResize:        "resize",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// StopReason says why a momentum run ended.
type StopReason string

const (
	StopSettled       StopReason = "settled"
	StopOuterBoundary StopReason = "outer-boundary"
	StopInnerBoundary StopReason = "inner-boundary"
	StopCancelled     StopReason = "cancelled"
)

type Event struct {
	Kind    EventKind
	Sample  Sample
	Dt      time.Duration
	Offsets Offsets
	Locked  bool
	Reason  StopReason
	Err     error
	// Extents is set on EventResize.
	Extents Extents
}

type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
