package momentum

import (
	"iter"
	"math"
	"time"
)

// Vector is a planar velocity in points per second.
type Vector struct {
	X, Y float64
}

// Velocity returns the unsigned speed t seconds into a run.
func Velocity(v0, decel, t float64) float64 {
	return math.Abs(v0) - decel*t
}

// Displacement returns the unsigned distance covered t seconds into a run.
func Displacement(v0, decel, t float64) float64 {
	return math.Abs(v0*t) - 0.5*decel*t*t
}

// StopTime is the instant the speed reaches zero.
func StopTime(v0, decel float64) time.Duration {
	if decel <= 0 {
		return 0
	}
	return seconds(math.Abs(v0) / decel)
}

// StopDistance is the distance covered when the speed reaches zero.
func StopDistance(v0, decel float64) float64 {
	if decel <= 0 {
		return 0
	}
	return v0 * v0 / (2 * decel)
}

// settled reports the self-stop condition of a run.
func settled(v0, decel, t float64) bool {
	return Displacement(v0, decel, t) <= 0 || Velocity(v0, decel, t) <= 0
}

// Trajectory lazily yields (elapsed, signed displacement) every frame,
// including the sample that ends the motion.
func Trajectory(sign float64, v Vector, decel float64, frame time.Duration) iter.Seq2[time.Duration, float64] {
	return func(yield func(time.Duration, float64) bool) {
		if frame <= 0 || decel <= 0 {
			return
		}
		dir, err := normalizeSign(sign)
		if err != nil {
			return
		}
		for elapsed := frame; ; elapsed += frame {
			t := elapsed.Seconds()
			if !yield(elapsed, dir*Displacement(v.Y, decel, t)) {
				return
			}
			if settled(v.Y, decel, t) {
				return
			}
		}
	}
}

func normalizeSign(sign float64) (float64, error) {
	switch {
	case sign > 0:
		return 1, nil
	case sign < 0:
		return -1, nil
	default:
		return 0, ErrInvalidSign
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
