package scroll

import (
	"context"
	"math"
	"time"

	"github.com/san-kum/nestscroll/internal/momentum"
	"github.com/san-kum/nestscroll/pkg/logger"
)

type Coordinator struct {
	outer            Panel
	inner            InnerPanel
	decelerationRate float64
	resetLockOnBegin bool
	log              logger.Logger
	observers        []Observer

	initial     Offsets
	innerLocked bool
	dragging    bool
	// skipGesture is set when a drag begins with no inner panel bound. The
	// whole drag is then a no-op even if a panel is bound midway.
	skipGesture bool
	momentum    *momentum.Simulator
	stopped     StopReason
}

func NewCoordinator(outer Panel, opts ...Option) *Coordinator {
	c := &Coordinator{
		outer:            outer,
		decelerationRate: DefaultDecelerationRate,
		log:              logger.Nop(),
		momentum:         momentum.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInnerPanel binds the nested panel. Passing nil unbinds it; updates are
// then no-ops until a panel is bound again. A drag that began unbound stays a
// no-op until it ends.
func (c *Coordinator) SetInnerPanel(p InnerPanel) {
	c.inner = p
	kind := EventBind
	if p == nil {
		kind = EventUnbind
	}
	c.emit(Event{Kind: kind, Offsets: c.Offsets(), Locked: c.innerLocked})
}

// InnerPanel returns the bound nested panel, nil when unbound.
func (c *Coordinator) InnerPanel() InnerPanel { return c.inner }

// ResizeOuter changes the outer panel's extents. The outer panel must have a
// Resize(content, viewport float64) method that keeps its offset in range.
func (c *Coordinator) ResizeOuter(content, viewport float64) error {
	r, ok := c.outer.(resizer)
	if !ok {
		return ErrNotResizable
	}
	r.Resize(content, viewport)

	ext := Extents{OuterContent: content, OuterViewport: viewport}
	if c.inner != nil {
		ext = extentsOf(c.outer, c.inner)
	}
	c.emit(Event{Kind: EventResize, Offsets: c.Offsets(), Locked: c.innerLocked, Extents: ext})
	return nil
}

func (c *Coordinator) AddObserver(o Observer) {
	if o != nil {
		c.observers = append(c.observers, o)
	}
}

func (c *Coordinator) InnerLocked() bool { return c.innerLocked }

func (c *Coordinator) State() State {
	switch {
	case c.dragging:
		return StateDragging
	case c.momentum.Active():
		return StateDecelerating
	default:
		return StateIdle
	}
}

// Offsets reads the current offsets. Inner is zero when no inner panel is bound.
func (c *Coordinator) Offsets() Offsets {
	o := Offsets{Outer: c.outer.OffsetY()}
	if c.inner != nil {
		o.Inner = c.inner.OffsetY()
	}
	return o
}

func (c *Coordinator) Extents() (Extents, bool) {
	if c.inner == nil {
		return Extents{}, false
	}
	return extentsOf(c.outer, c.inner), true
}

// Momentum returns a snapshot of the active momentum run.
func (c *Coordinator) Momentum() (momentum.Run, bool) {
	return c.momentum.Run()
}

// Handle applies one drag sample.
func (c *Coordinator) Handle(s Sample) {
	switch s.Phase {
	case PhaseBegin:
		if c.momentum.Active() {
			c.stopMomentum(StopCancelled)
		}
		c.dragging = true
		c.skipGesture = c.inner == nil
		if c.resetLockOnBegin {
			c.innerLocked = false
		}
		c.updateInitials()
		c.apply(s.TranslationY)
	case PhaseChanged:
		c.apply(s.TranslationY)
	case PhaseCancelled, PhaseEnded:
		c.apply(s.TranslationY)
		c.dragging = false
		c.startMomentum(s)
		c.skipGesture = false
	}

	c.emit(Event{Kind: EventGesture, Sample: s, Offsets: c.Offsets(), Locked: c.innerLocked})
}

// Tick advances an active momentum run by dt. It is the per-frame entry
// point for whatever clock the host uses. Frames with dt <= 0 are ignored.
func (c *Coordinator) Tick(dt time.Duration) {
	if dt <= 0 || !c.momentum.Active() {
		return
	}

	c.stopped = ""
	active := c.momentum.Tick(dt)
	c.emit(Event{Kind: EventTick, Dt: dt, Offsets: c.Offsets(), Locked: c.innerLocked})

	if !active && c.stopped == "" {
		c.stopped = StopSettled
		c.log.Debug(context.Background(), "momentum settled", logger.Float64("outer", c.outer.OffsetY()))
		c.emit(Event{Kind: EventMomentumStop, Reason: StopSettled, Offsets: c.Offsets(), Locked: c.innerLocked})
	}
}

// ScrollTo moves both panels directly, cancelling momentum and releasing the
// inner lock. Offsets are clamped to the panel ranges.
func (c *Coordinator) ScrollTo(o Offsets) {
	if c.momentum.Active() {
		c.stopMomentum(StopCancelled)
	}
	c.innerLocked = false

	outerMax := maxOffset(c.outer.ContentHeight(), c.outer.ViewportHeight())
	c.outer.SetOffsetY(clamp(o.Outer, 0, outerMax))
	if inner := c.inner; inner != nil {
		inner.SetOffsetY(clamp(o.Inner, 0, maxOffset(inner.ContentHeight(), inner.ViewportHeight())))
	}
	c.updateInitials()

	c.emit(Event{Kind: EventReset, Offsets: c.Offsets()})
}

// Compute runs the handoff rules for a translation measured from the last
// snapshot and returns the resulting offsets without writing them. The inner
// lock is updated as a side effect.
func (c *Coordinator) Compute(translation float64) (Offsets, error) {
	inner := c.inner
	if inner == nil {
		return Offsets{}, ErrNoInnerPanel
	}
	ext := extentsOf(c.outer, inner)

	t := -translation
	candidate := c.initial.Outer + t + c.initial.Inner

	current := c.outer.OffsetY()
	result := Offsets{Outer: current, Inner: inner.OffsetY()}
	forceOuter := false

	if current >= ext.InnerFrameTop || c.innerLocked {
		relative := math.Max(0, candidate-ext.InnerFrameTop)
		result.Inner = clamp(relative, 0, ext.InnerMax())
		c.innerLocked = true

		// Scrolled back above the inner panel's top: outer takes over this update.
		if relative <= 0 {
			c.innerLocked = false
			forceOuter = true
		}
	}

	if (current < ext.InnerFrameTop && !c.innerLocked) || forceOuter {
		outer := clamp(candidate, 0, ext.OuterMax())
		result.Outer = math.Max(0, math.Min(outer, ext.InnerFrameTop))
	}

	return result, nil
}

func (c *Coordinator) apply(translation float64) bool {
	wasLocked := c.innerLocked

	if c.skipGesture {
		c.emit(Event{Kind: EventSkipped, Err: ErrNoInnerPanel, Offsets: c.Offsets()})
		return false
	}
	result, err := c.Compute(translation)
	if err != nil {
		c.log.Debug(context.Background(), "offset update skipped", logger.Error(err))
		c.emit(Event{Kind: EventSkipped, Err: err, Offsets: c.Offsets()})
		return false
	}

	c.outer.SetOffsetY(result.Outer)
	c.inner.SetOffsetY(result.Inner)

	switch {
	case !wasLocked && c.innerLocked:
		c.emit(Event{Kind: EventHandoff, Offsets: result, Locked: true})
	case wasLocked && !c.innerLocked:
		c.emit(Event{Kind: EventHandback, Offsets: result})
	}
	return true
}

func (c *Coordinator) updateInitials() {
	inner := c.inner
	if inner == nil {
		return
	}
	c.initial = Offsets{Outer: c.outer.OffsetY(), Inner: inner.OffsetY()}
}

func (c *Coordinator) startMomentum(s Sample) {
	ctx := context.Background()

	if c.inner == nil || c.skipGesture {
		c.emit(Event{Kind: EventSkipped, Err: ErrNoInnerPanel, Offsets: c.Offsets()})
		return
	}
	if s.TranslationY == 0 || math.IsNaN(s.TranslationY) {
		c.log.Debug(ctx, "momentum skipped", logger.Error(ErrZeroTranslation))
		c.emit(Event{Kind: EventSkipped, Err: ErrZeroTranslation, Offsets: c.Offsets()})
		return
	}

	decel := c.decelerationRate * decelerationScale
	sign := s.TranslationY / math.Abs(s.TranslationY)

	c.updateInitials()
	err := c.momentum.Start(sign, momentum.Vector{Y: s.VelocityY}, decel, c.onMomentumTick)
	if err != nil {
		c.log.Warn(ctx, "momentum not started", logger.Error(err))
		c.emit(Event{Kind: EventSkipped, Err: err, Offsets: c.Offsets()})
		return
	}

	c.log.Debug(ctx, "momentum started",
		logger.Float64("velocity", s.VelocityY),
		logger.Float64("sign", sign),
		logger.Float64("deceleration", decel),
	)
	c.emit(Event{Kind: EventMomentumStart, Sample: s, Offsets: c.Offsets(), Locked: c.innerLocked})
}

func (c *Coordinator) onMomentumTick(displacement float64, _ *momentum.Simulator) {
	if !c.apply(displacement) {
		return
	}

	inner := c.inner
	switch {
	case c.outer.OffsetY() <= 0:
		c.stopMomentum(StopOuterBoundary)
	case inner.OffsetY() >= maxOffset(inner.ContentHeight(), inner.ViewportHeight()):
		c.stopMomentum(StopInnerBoundary)
	}
}

func (c *Coordinator) stopMomentum(reason StopReason) {
	c.momentum.Stop()
	c.stopped = reason
	c.log.Debug(context.Background(), "momentum stopped", logger.String("reason", string(reason)))
	c.emit(Event{Kind: EventMomentumStop, Reason: reason, Offsets: c.Offsets(), Locked: c.innerLocked})
}

func (c *Coordinator) emit(e Event) {
	for _, o := range c.observers {
		o.Observe(e)
	}
}
