package momentum

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

const frame = time.Second / 60

func TestKinematics(t *testing.T) {
	tests := []struct {
		name     string
		v0, a, t float64
		vel, pos float64
	}{
		{"start", 1000, 998, 0, 1000, 0},
		{"half second", 1000, 1000, 0.5, 500, 375},
		{"negative start velocity", -1000, 1000, 0.5, 500, 375},
		{"past stop", 1000, 1000, 1.5, -500, 375},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Velocity(tt.v0, tt.a, tt.t); math.Abs(got-tt.vel) > 1e-9 {
				t.Errorf("Velocity = %f, want %f", got, tt.vel)
			}
			if got := Displacement(tt.v0, tt.a, tt.t); math.Abs(got-tt.pos) > 1e-9 {
				t.Errorf("Displacement = %f, want %f", got, tt.pos)
			}
		})
	}
}

func TestStopTimeAndDistance(t *testing.T) {
	if got := StopTime(1000, 500); got != 2*time.Second {
		t.Errorf("StopTime = %v, want 2s", got)
	}
	if got := StopDistance(1000, 500); got != 1000 {
		t.Errorf("StopDistance = %f, want 1000", got)
	}
	if got := StopTime(1000, 0); got != 0 {
		t.Errorf("StopTime with zero deceleration = %v, want 0", got)
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name  string
		sign  float64
		decel float64
		want  error
	}{
		{"zero deceleration", 1, 0, ErrInvalidDeceleration},
		{"negative deceleration", 1, -10, ErrInvalidDeceleration},
		{"nan deceleration", 1, math.NaN(), ErrInvalidDeceleration},
		{"inf deceleration", 1, math.Inf(1), ErrInvalidDeceleration},
		{"zero sign", 0, 998, ErrInvalidSign},
		{"nan sign", math.NaN(), 998, ErrInvalidSign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Start(tt.sign, Vector{Y: 100}, tt.decel, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Start error = %v, want %v", err, tt.want)
			}
			if s.Active() {
				t.Error("simulator active after rejected start")
			}
		})
	}
}

func TestSignIsNormalized(t *testing.T) {
	s := New()
	if err := s.Start(-42, Vector{Y: 100}, 998, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	run, ok := s.Run()
	if !ok || run.Sign != -1 {
		t.Errorf("expected sign -1, got %v (active=%v)", run.Sign, ok)
	}
}

func TestTickSignedDisplacement(t *testing.T) {
	s := New()
	var got []float64
	err := s.Start(-1, Vector{Y: 1000}, 1000, func(d float64, _ *Simulator) {
		got = append(got, d)
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Tick(500 * time.Millisecond)
	if len(got) != 1 || math.Abs(got[0]+375) > 1e-9 {
		t.Fatalf("expected displacement -375, got %v", got)
	}
}

func TestSelfStopsAtZeroVelocity(t *testing.T) {
	s := New()
	ticks := 0
	if err := s.Start(1, Vector{Y: 1000}, 1000, func(float64, *Simulator) { ticks++ }); err != nil {
		t.Fatalf("start: %v", err)
	}

	n, err := s.Drain(context.Background(), frame, 0)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if s.Active() {
		t.Fatal("simulator still active after drain")
	}
	if n != ticks {
		t.Errorf("drain reported %d ticks, handler saw %d", n, ticks)
	}
	// 1s of motion at 60fps; the first frame where v <= 0 ends the run.
	if n < 59 || n > 61 {
		t.Errorf("expected about 60 ticks, got %d", n)
	}
}

func TestMonotonicDecay(t *testing.T) {
	const v0, a = 1500.0, 998.0
	prevV, prevS := math.Inf(1), math.Inf(-1)
	stop := StopTime(v0, a).Seconds()

	for i := 1; i < 200; i++ {
		tm := float64(i) * frame.Seconds()
		v, s := Velocity(v0, a, tm), Displacement(v0, a, tm)
		if v > prevV {
			t.Fatalf("velocity increased at t=%f", tm)
		}
		if tm <= stop && s < prevS {
			t.Fatalf("displacement decreased before stop at t=%f", tm)
		}
		prevV, prevS = v, s
	}
}

func TestStopFromHandler(t *testing.T) {
	s := New()
	calls := 0
	err := s.Start(1, Vector{Y: 5000}, 998, func(_ float64, sim *Simulator) {
		calls++
		if calls == 3 {
			sim.Stop()
			sim.Stop()
		}
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	n, _ := s.Drain(context.Background(), frame, 100)
	if calls != 3 || n != 3 {
		t.Errorf("expected 3 ticks, got calls=%d drain=%d", calls, n)
	}
}

func TestRestartFromHandlerSurvivesSelfStop(t *testing.T) {
	s := New()
	restarted := false
	err := s.Start(1, Vector{Y: 10}, 1000, func(_ float64, sim *Simulator) {
		if !restarted {
			restarted = true
			_ = sim.Start(-1, Vector{Y: 2000}, 1000, nil)
		}
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// The first run settles on this tick but the replacement must survive.
	if !s.Tick(100 * time.Millisecond) {
		t.Fatal("replacement run was stopped by the settled run")
	}
	run, _ := s.Run()
	if run.Sign != -1 || run.Elapsed != 0 {
		t.Errorf("unexpected replacement run %+v", run)
	}
}

func TestStartSupersedes(t *testing.T) {
	s := New()
	first := 0
	_ = s.Start(1, Vector{Y: 1000}, 998, func(float64, *Simulator) { first++ })
	s.Tick(frame)
	_ = s.Start(1, Vector{Y: 1000}, 998, nil)
	s.Tick(frame)

	if first != 1 {
		t.Errorf("superseded handler ran %d times, want 1", first)
	}
	run, _ := s.Run()
	if run.Ticks != 1 {
		t.Errorf("new run ticks = %d, want 1", run.Ticks)
	}
}

func TestTickWithoutElapsedTime(t *testing.T) {
	s := New()
	calls := 0
	if err := s.Start(-1, Vector{Y: 3000}, 998, func(float64, *Simulator) { calls++ }); err != nil {
		t.Fatal(err)
	}

	for _, dt := range []time.Duration{0, -frame} {
		if !s.Tick(dt) {
			t.Fatalf("tick of %v ended the run", dt)
		}
	}
	if calls != 0 {
		t.Errorf("handler called %d times for empty frames", calls)
	}
	run, _ := s.Run()
	if run.Ticks != 0 || run.Elapsed != 0 {
		t.Errorf("run advanced: %+v", run)
	}

	if !s.Tick(frame) || calls != 1 {
		t.Errorf("first real frame: active=%v calls=%d", s.Active(), calls)
	}
}

func TestTickIdle(t *testing.T) {
	s := New()
	if s.Tick(frame) {
		t.Error("idle tick reported active")
	}
	s.Stop()
}

func TestDrainCanceled(t *testing.T) {
	s := New()
	_ = s.Start(1, Vector{Y: 1000}, 998, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Drain(ctx, frame, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := s.Drain(context.Background(), 0, 0); err == nil {
		t.Error("expected error for zero frame")
	}
}

func TestTrajectory(t *testing.T) {
	var last float64
	n := 0
	for elapsed, d := range Trajectory(-1, Vector{Y: 600}, 600, frame) {
		n++
		last = d
		if elapsed != time.Duration(n)*frame {
			t.Fatalf("sample %d at %v", n, elapsed)
		}
		if d > 0 {
			t.Fatalf("negative sign produced positive displacement %f", d)
		}
	}
	if n < 59 || n > 61 {
		t.Errorf("expected about 60 samples, got %d", n)
	}
	if math.Abs(last+StopDistance(600, 600)) > 5 {
		t.Errorf("final displacement %f far from stop distance", last)
	}

	for range Trajectory(0, Vector{Y: 600}, 600, frame) {
		t.Fatal("zero sign must yield nothing")
	}
}
