// Package momentum simulates the deceleration that continues a scroll after
// the finger lifts.
//
// Motion is one-dimensional with constant deceleration:
//
//	v(t) = |v0| - a*t
//	s(t) = |v0|*t - a*t²/2
//
// A [Simulator] owns at most one [Run]. It is advanced explicitly with
// [Simulator.Tick], so any clock can drive it: a render loop, a test, or
// [Simulator.Drain] for headless runs. The tick handler may call
// [Simulator.Stop] or [Simulator.Start] on the simulator that invoked it.
//
// # Thread Safety
//
// Simulator is NOT thread-safe. All calls must come from the update loop that
// owns it.
package momentum
