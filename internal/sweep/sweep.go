// Package sweep runs batches of headless flings, one coordinator per case,
// to compare where a release velocity and deceleration rate leave the panels.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/nestscroll/internal/config"
	"github.com/san-kum/nestscroll/internal/panel"
	"github.com/san-kum/nestscroll/internal/scroll"
)

// Case is one grid point. Speed is the release speed in points/s.
type Case struct {
	Speed float64
	Rate  float64
}

type Config struct {
	Layout config.Layout
	// Direction is the pointer direction at release: -1 pulls the content
	// up (scrolls down), +1 pushes it back.
	Direction        float64
	Frame            time.Duration
	MaxTicks         int
	ResetLockOnBegin bool
	// Start is applied with ScrollTo before the fling.
	Start scroll.Offsets
}

type Result struct {
	Case
	Final    scroll.Offsets
	Reason   scroll.StopReason
	Frames   int
	Handoffs int
	Locked   bool
}

// Grid returns every speed/rate combination, speeds varying fastest.
func Grid(speeds, rates []float64) []Case {
	cases := make([]Case, 0, len(speeds)*len(rates))
	for _, r := range rates {
		for _, s := range speeds {
			cases = append(cases, Case{Speed: s, Rate: r})
		}
	}
	return cases
}

// Run plays every case concurrently. Results keep the order of cases.
func Run(ctx context.Context, cfg Config, cases []Case) ([]Result, error) {
	if cfg.Frame <= 0 {
		return nil, fmt.Errorf("sweep: frame must be positive, got %v", cfg.Frame)
	}
	if cfg.MaxTicks <= 0 {
		return nil, fmt.Errorf("sweep: max ticks must be positive, got %d", cfg.MaxTicks)
	}

	results := make([]Result, len(cases))
	errs := make([]error, len(cases))

	var wg sync.WaitGroup
	for i, c := range cases {
		wg.Add(1)
		go func(idx int, c Case) {
			defer wg.Done()
			results[idx], errs[idx] = runCase(ctx, cfg, c)
		}(i, c)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func runCase(ctx context.Context, cfg Config, c Case) (Result, error) {
	l := cfg.Layout
	res := Result{Case: c}

	dir := cfg.Direction
	if dir == 0 {
		dir = -1
	}

	watch := scroll.ObserverFunc(func(e scroll.Event) {
		switch e.Kind {
		case scroll.EventHandoff:
			res.Handoffs++
		case scroll.EventMomentumStop:
			res.Reason = e.Reason
		}
	})

	coord := scroll.NewCoordinator(
		panel.NewOuter(l.OuterContent, l.OuterViewport),
		scroll.WithInnerPanel(panel.NewInner(l.InnerTop, l.InnerContent, l.InnerViewport)),
		scroll.WithDecelerationRate(c.Rate),
		scroll.WithResetLockOnBegin(cfg.ResetLockOnBegin),
	)
	coord.ScrollTo(cfg.Start)
	coord.AddObserver(watch)

	coord.Handle(scroll.Sample{Phase: scroll.PhaseBegin})
	coord.Handle(scroll.Sample{Phase: scroll.PhaseEnded, TranslationY: dir, VelocityY: dir * c.Speed})

	for res.Frames < cfg.MaxTicks && coord.State() == scroll.StateDecelerating {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		coord.Tick(cfg.Frame)
		res.Frames++
	}

	res.Final = coord.Offsets()
	res.Locked = coord.InnerLocked()
	return res, nil
}
