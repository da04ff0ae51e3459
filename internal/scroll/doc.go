// Package scroll coordinates an outer scroll panel with a nested inner panel
// so that one drag behaves like a single continuous scroll surface.
//
// The outer panel scrolls until the inner panel's top edge reaches the
// viewport, then the inner panel takes over until its content runs out.
// Reversing the drag hands control back to the outer panel in the same
// update. After release, a [momentum.Simulator] continues the motion through
// the same offset computation.
//
//   - [Panel], [InnerPanel]: offset and extent handles owned by the host UI
//   - [Sample]: one reading from the drag source
//   - [Coordinator]: the handoff state machine
//   - [Observer]: receives [Event]s for metrics and recording
//
// # Example
//
//	c := scroll.NewCoordinator(outer, scroll.WithInnerPanel(inner))
//	c.Handle(scroll.Sample{Phase: scroll.PhaseBegin})
//	c.Handle(scroll.Sample{Phase: scroll.PhaseChanged, TranslationY: -120})
//	c.Handle(scroll.Sample{Phase: scroll.PhaseEnded, TranslationY: -180, VelocityY: -900})
//	for c.State() == scroll.StateDecelerating {
//	    c.Tick(time.Second / 60)
//	}
//
// # Thread Safety
//
// Coordinator is NOT thread-safe. Samples and ticks must arrive on the same
// update loop, which is how every UI toolkit delivers them.
package scroll
