package gesture

import (
	"fmt"
	"time"

	"github.com/san-kum/nestscroll/internal/scroll"
)

// Fling is a scripted drag moving the pointer Distance points at constant
// speed over Duration, then releasing.
type Fling struct {
	Distance float64
	Duration time.Duration
	Steps    int
}

// Timed is a sample with its offset from the start of the script.
type Timed struct {
	At     time.Duration
	Sample scroll.Sample
}

func (f Fling) Validate() error {
	if f.Duration <= 0 {
		return fmt.Errorf("fling duration must be positive, got %v", f.Duration)
	}
	if f.Steps < 1 {
		return fmt.Errorf("fling needs at least one step, got %d", f.Steps)
	}
	return nil
}

// Samples plays the script through a Tracker: one Begin, Steps-1 Changed
// samples and a final Ended.
func (f Fling) Samples() ([]Timed, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	base := time.Unix(0, 0)
	tr := NewTracker(DefaultWindow)
	out := make([]Timed, 0, f.Steps+1)
	out = append(out, Timed{Sample: tr.Begin(0, base)})

	for i := 1; i <= f.Steps; i++ {
		at := f.Duration * time.Duration(i) / time.Duration(f.Steps)
		y := f.Distance * float64(i) / float64(f.Steps)

		var s scroll.Sample
		if i == f.Steps {
			s, _ = tr.End(y, base.Add(at))
		} else {
			s, _ = tr.Move(y, base.Add(at))
		}
		out = append(out, Timed{At: at, Sample: s})
	}
	return out, nil
}
