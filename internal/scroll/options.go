package scroll

import "github.com/san-kum/nestscroll/pkg/logger"

// DefaultDecelerationRate matches the "normal" rate of a platform scroll view.
const DefaultDecelerationRate = 0.998

// decelerationScale turns a per-frame deceleration rate into points/s².
const decelerationScale = 1000.0

type Option func(*Coordinator)

// WithInnerPanel binds the nested panel at construction time.
func WithInnerPanel(p InnerPanel) Option {
	return func(c *Coordinator) { c.inner = p }
}

// WithDecelerationRate sets the rate scaled by 1000 into the momentum
// deceleration magnitude. Non-positive values are ignored.
func WithDecelerationRate(rate float64) Option {
	return func(c *Coordinator) {
		if rate > 0 {
			c.decelerationRate = rate
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithResetLockOnBegin clears the inner lock whenever a new drag begins.
// Off by default: the lock then carries over between drags until the
// offset computation releases it.
func WithResetLockOnBegin(reset bool) Option {
	return func(c *Coordinator) { c.resetLockOnBegin = reset }
}
