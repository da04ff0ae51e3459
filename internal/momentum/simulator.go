package momentum

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Handler receives the signed displacement of every tick along with the
// simulator that produced it.
type Handler func(displacement float64, s *Simulator)

// Run describes one deceleration run.
type Run struct {
	Sign          float64
	StartVelocity Vector
	Deceleration  float64
	Elapsed       time.Duration
	Ticks         int
}

// Velocity is the unsigned speed at the current elapsed time.
func (r Run) Velocity() float64 {
	return Velocity(r.StartVelocity.Y, r.Deceleration, r.Elapsed.Seconds())
}

// Displacement is the signed displacement at the current elapsed time.
func (r Run) Displacement() float64 {
	return r.Sign * Displacement(r.StartVelocity.Y, r.Deceleration, r.Elapsed.Seconds())
}

type Simulator struct {
	run     *Run
	handler Handler
}

func New() *Simulator {
	return &Simulator{}
}

// Start begins a new run, superseding any active one.
func (s *Simulator) Start(sign float64, v Vector, decel float64, h Handler) error {
	s.Stop()

	if decel <= 0 || math.IsNaN(decel) || math.IsInf(decel, 0) {
		return fmt.Errorf("%w: got %f", ErrInvalidDeceleration, decel)
	}
	dir, err := normalizeSign(sign)
	if err != nil {
		return fmt.Errorf("%w: got %f", err, sign)
	}

	s.run = &Run{Sign: dir, StartVelocity: v, Deceleration: decel}
	s.handler = h
	return nil
}

// Stop cancels the active run. Safe to call at any time, including from the handler.
func (s *Simulator) Stop() {
	s.run = nil
	s.handler = nil
}

func (s *Simulator) Active() bool { return s.run != nil }

// Run returns a snapshot of the active run.
func (s *Simulator) Run() (Run, bool) {
	if s.run == nil {
		return Run{}, false
	}
	return *s.run, true
}

// Tick advances the active run by dt, invokes the handler and applies the
// self-stop rule. It reports whether a run is still active afterwards. A
// frame with dt <= 0 does nothing, so repeated timestamps cannot end a run
// before it moves.
func (s *Simulator) Tick(dt time.Duration) bool {
	run := s.run
	if run == nil {
		return false
	}
	if dt <= 0 {
		return true
	}
	run.Elapsed += dt
	run.Ticks++

	t := run.Elapsed.Seconds()
	v0, decel := run.StartVelocity.Y, run.Deceleration

	if h := s.handler; h != nil {
		h(run.Sign*Displacement(v0, decel, t), s)
	}

	// The handler may have stopped this run or started another one.
	if s.run == run && settled(v0, decel, t) {
		s.Stop()
	}
	return s.run != nil
}

// Drain ticks fixed frames until the simulator goes idle, maxTicks is reached
// or ctx is done. It returns the number of ticks performed.
func (s *Simulator) Drain(ctx context.Context, frame time.Duration, maxTicks int) (int, error) {
	if frame <= 0 {
		return 0, fmt.Errorf("frame must be positive, got %v", frame)
	}

	n := 0
	for s.Active() && (maxTicks <= 0 || n < maxTicks) {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}

		s.Tick(frame)
		n++
	}
	return n, nil
}
