package storage

import (
	"time"

	"github.com/san-kum/nestscroll/internal/scroll"
)

const (
	KindGesture = "gesture"
	KindTick    = "tick"
	KindReset   = "reset"
	KindBind    = "bind"
	KindUnbind  = "unbind"
	KindResize  = "resize"
)

// Frame is one recorded coordinator input and the offsets it produced.
type Frame struct {
	Time        time.Duration `json:"time"`
	Kind        string        `json:"kind"`
	Phase       string        `json:"phase,omitempty"`
	Translation float64       `json:"translation"`
	Velocity    float64       `json:"velocity"`
	Dt          time.Duration `json:"dt"`
	// Content and Viewport are the outer extents after a resize.
	Content  float64 `json:"content,omitempty"`
	Viewport float64 `json:"viewport,omitempty"`
	Outer    float64 `json:"outer"`
	Inner    float64 `json:"inner"`
	Locked   bool    `json:"locked"`
}

// Recorder captures the inputs a coordinator applied so a session can be
// stored and replayed.
type Recorder struct {
	now    func() time.Time
	start  time.Time
	frames []Frame
}

func NewRecorder() *Recorder {
	return NewRecorderWithClock(time.Now)
}

func NewRecorderWithClock(now func() time.Time) *Recorder {
	return &Recorder{now: now, start: now(), frames: make([]Frame, 0, 256)}
}

func (r *Recorder) Observe(e scroll.Event) {
	f := Frame{
		Time:   r.now().Sub(r.start),
		Outer:  e.Offsets.Outer,
		Inner:  e.Offsets.Inner,
		Locked: e.Locked,
	}

	switch e.Kind {
	case scroll.EventGesture:
		f.Kind = KindGesture
		f.Phase = e.Sample.Phase.String()
		f.Translation = e.Sample.TranslationY
		f.Velocity = e.Sample.VelocityY
	case scroll.EventTick:
		f.Kind = KindTick
		f.Dt = e.Dt
	case scroll.EventReset:
		f.Kind = KindReset
	case scroll.EventBind:
		f.Kind = KindBind
	case scroll.EventUnbind:
		f.Kind = KindUnbind
	case scroll.EventResize:
		f.Kind = KindResize
		f.Content = e.Extents.OuterContent
		f.Viewport = e.Extents.OuterViewport
	default:
		return
	}
	r.frames = append(r.frames, f)
}

func (r *Recorder) Frames() []Frame {
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

func (r *Recorder) Len() int { return len(r.frames) }
