package storage

import (
	"fmt"
	"math"

	"github.com/san-kum/nestscroll/internal/scroll"
)

type ReplayResult struct {
	Frames       int
	Final        scroll.Offsets
	MaxDeviation float64
}

// Replay feeds recorded frames into c and measures how far the offsets it
// produces drift from the recorded ones. Bind frames rebind the inner panel c
// held when the replay started.
func Replay(frames []Frame, c *scroll.Coordinator) (ReplayResult, error) {
	var res ReplayResult
	inner := c.InnerPanel()

	for i, f := range frames {
		switch f.Kind {
		case KindGesture:
			phase, ok := scroll.ParsePhase(f.Phase)
			if !ok {
				return res, fmt.Errorf("frame %d: unknown phase %q", i, f.Phase)
			}
			c.Handle(scroll.Sample{Phase: phase, TranslationY: f.Translation, VelocityY: f.Velocity})
		case KindTick:
			c.Tick(f.Dt)
		case KindReset:
			c.ScrollTo(scroll.Offsets{Outer: f.Outer, Inner: f.Inner})
		case KindUnbind:
			c.SetInnerPanel(nil)
		case KindBind:
			if inner == nil {
				return res, fmt.Errorf("frame %d: no inner panel to bind", i)
			}
			c.SetInnerPanel(inner)
		case KindResize:
			if err := c.ResizeOuter(f.Content, f.Viewport); err != nil {
				return res, fmt.Errorf("frame %d: %w", i, err)
			}
		default:
			return res, fmt.Errorf("frame %d: unknown kind %q", i, f.Kind)
		}

		got := c.Offsets()
		dev := math.Max(math.Abs(got.Outer-f.Outer), math.Abs(got.Inner-f.Inner))
		res.MaxDeviation = math.Max(res.MaxDeviation, dev)
		res.Frames++
	}

	res.Final = c.Offsets()
	return res, nil
}
