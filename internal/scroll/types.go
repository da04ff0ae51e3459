package scroll

import "math"

// Panel is a vertically scrolling surface. Offsets and extents are in points.
type Panel interface {
	OffsetY() float64
	SetOffsetY(y float64)
	ContentHeight() float64
	ViewportHeight() float64
}

// InnerPanel is the nested panel. FrameTop is its top edge in the outer
// panel's content coordinates.
type InnerPanel interface {
	Panel
	FrameTop() float64
}

type resizer interface {
	Resize(content, viewport float64)
}

type Phase int

const (
	PhaseBegin Phase = iota
	PhaseChanged
	PhaseCancelled
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhaseChanged:
		return "changed"
	case PhaseCancelled:
		return "cancelled"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, bool) {
	for p := PhaseBegin; p <= PhaseEnded; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// Sample is one drag reading. TranslationY is measured from where the drag
// began; negative means the finger moved up.
type Sample struct {
	TranslationY float64
	VelocityY    float64
	Phase        Phase
}

// Offsets holds the vertical content offsets of both panels.
type Offsets struct {
	Outer float64
	Inner float64
}

// Extents is a read-only snapshot of the panel geometry.
type Extents struct {
	OuterContent  float64
	OuterViewport float64
	InnerFrameTop float64
	InnerContent  float64
	InnerViewport float64
}

// OuterMax is the largest valid outer offset, never negative.
func (e Extents) OuterMax() float64 { return maxOffset(e.OuterContent, e.OuterViewport) }

// InnerMax is the largest valid inner offset, never negative.
func (e Extents) InnerMax() float64 { return maxOffset(e.InnerContent, e.InnerViewport) }

func extentsOf(outer Panel, inner InnerPanel) Extents {
	return Extents{
		OuterContent:  outer.ContentHeight(),
		OuterViewport: outer.ViewportHeight(),
		InnerFrameTop: inner.FrameTop(),
		InnerContent:  inner.ContentHeight(),
		InnerViewport: inner.ViewportHeight(),
	}
}

func maxOffset(content, viewport float64) float64 {
	return math.Max(0, content-viewport)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

type State int

const (
	StateIdle State = iota
	StateDragging
	StateDecelerating
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateDecelerating:
		return "decelerating"
	default:
		return "idle"
	}
}
