package scroll_test

import (
	"math/rand/v2"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nestscroll/internal/panel"
	"github.com/san-kum/nestscroll/internal/scroll"
)

const frame = time.Second / 60

type eventLog struct {
	events []scroll.Event
}

func (l *eventLog) Observe(e scroll.Event) { l.events = append(l.events, e) }

func (l *eventLog) kinds(k scroll.EventKind) []scroll.Event {
	var out []scroll.Event
	for _, e := range l.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func begin(tr float64) scroll.Sample {
	return scroll.Sample{Phase: scroll.PhaseBegin, TranslationY: tr}
}
func changed(tr float64) scroll.Sample {
	return scroll.Sample{Phase: scroll.PhaseChanged, TranslationY: tr}
}
func ended(tr, v float64) scroll.Sample {
	return scroll.Sample{Phase: scroll.PhaseEnded, TranslationY: tr, VelocityY: v}
}

type fixedPanel struct{}

func (fixedPanel) OffsetY() float64        { return 0 }
func (fixedPanel) SetOffsetY(float64)      {}
func (fixedPanel) ContentHeight() float64  { return 1000 }
func (fixedPanel) ViewportHeight() float64 { return 500 }

func drain(c *scroll.Coordinator) int {
	n := 0
	for c.State() == scroll.StateDecelerating && n < 10000 {
		c.Tick(frame)
		n++
	}
	return n
}

var _ = Describe("Coordinator", func() {
	var (
		outer *panel.Surface
		inner *panel.Surface
		log   *eventLog
		c     *scroll.Coordinator
	)

	BeforeEach(func() {
		// outer max 1200, inner top 500, inner max 900
		outer = panel.NewOuter(2000, 800)
		inner = panel.NewInner(500, 1500, 600)
		log = &eventLog{}
		c = scroll.NewCoordinator(outer, scroll.WithInnerPanel(inner), scroll.WithObserver(log))
	})

	Describe("dragging the outer panel", func() {
		It("scrolls the outer panel while the inner top is below the viewport", func() {
			c.Handle(begin(0))
			c.Handle(changed(-100))

			Expect(c.Offsets()).To(Equal(scroll.Offsets{Outer: 100, Inner: 0}))
			Expect(c.InnerLocked()).To(BeFalse())
			Expect(c.State()).To(Equal(scroll.StateDragging))
		})

		It("never moves the outer panel past the inner top", func() {
			c.Handle(begin(0))
			c.Handle(changed(-700))

			Expect(outer.OffsetY()).To(Equal(500.0))
			Expect(inner.OffsetY()).To(Equal(0.0))
		})

		It("hands off to the inner panel on the next update", func() {
			c.Handle(begin(0))
			c.Handle(changed(-700))
			c.Handle(changed(-710))

			Expect(outer.OffsetY()).To(Equal(500.0))
			Expect(inner.OffsetY()).To(Equal(210.0))
			Expect(c.InnerLocked()).To(BeTrue())
			Expect(log.kinds(scroll.EventHandoff)).To(HaveLen(1))
		})

		It("clamps the outer panel at the top", func() {
			c.Handle(begin(0))
			c.Handle(changed(250))

			Expect(outer.OffsetY()).To(Equal(0.0))
		})
	})

	Describe("with the inner panel at the top of the viewport", func() {
		BeforeEach(func() {
			c.ScrollTo(scroll.Offsets{Outer: 500})
			c.Handle(begin(0))
		})

		It("scrolls only the inner panel", func() {
			c.Handle(changed(-50))

			Expect(outer.OffsetY()).To(Equal(500.0))
			Expect(inner.OffsetY()).To(Equal(50.0))
			Expect(c.InnerLocked()).To(BeTrue())
		})

		It("keeps the outer panel still while the drag keeps advancing", func() {
			for tr := -10.0; tr >= -800; tr -= 10 {
				c.Handle(changed(tr))
				Expect(outer.OffsetY()).To(Equal(500.0))
			}
			Expect(inner.OffsetY()).To(Equal(800.0))
		})

		It("clamps the inner panel at its content end", func() {
			c.Handle(changed(-5000))

			Expect(inner.OffsetY()).To(Equal(900.0))
			Expect(outer.OffsetY()).To(Equal(500.0))
		})

		It("hands back to the outer panel within the same update", func() {
			c.Handle(changed(-200))
			Expect(inner.OffsetY()).To(Equal(200.0))

			c.Handle(changed(100))

			Expect(c.InnerLocked()).To(BeFalse())
			Expect(inner.OffsetY()).To(Equal(0.0))
			Expect(outer.OffsetY()).To(Equal(400.0))
			Expect(log.kinds(scroll.EventHandback)).To(HaveLen(1))
		})
	})

	Describe("offset bounds", func() {
		It("keeps both offsets inside their ranges for arbitrary drags", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			for g := 0; g < 50; g++ {
				c.Handle(begin(0))
				tr := 0.0
				for i := 0; i < 40; i++ {
					tr += rng.Float64()*400 - 200
					c.Handle(changed(tr))

					Expect(outer.OffsetY()).To(BeNumerically(">=", 0))
					Expect(outer.OffsetY()).To(BeNumerically("<=", 1200))
					Expect(inner.OffsetY()).To(BeNumerically(">=", 0))
					Expect(inner.OffsetY()).To(BeNumerically("<=", 900))
				}
				c.Handle(scroll.Sample{Phase: scroll.PhaseCancelled, TranslationY: tr, VelocityY: rng.Float64()*4000 - 2000})
				drain(c)

				Expect(outer.OffsetY()).To(BeNumerically("<=", 1200))
				Expect(inner.OffsetY()).To(BeNumerically("<=", 900))
			}
		})

		It("pins panels whose content is shorter than the viewport", func() {
			short := panel.NewInner(100, 200, 600)
			c.SetInnerPanel(short)
			outer.Resize(500, 800)

			c.Handle(begin(0))
			c.Handle(changed(-300))
			c.Handle(changed(-600))

			Expect(outer.OffsetY()).To(Equal(0.0))
			Expect(short.OffsetY()).To(Equal(0.0))
		})
	})

	Describe("momentum", func() {
		It("continues the drag and stops at the inner content end", func() {
			c.Handle(begin(0))
			c.Handle(changed(-100))
			c.Handle(ended(-100, -2000))
			Expect(c.State()).To(Equal(scroll.StateDecelerating))

			c.Tick(frame)
			Expect(outer.OffsetY()).To(BeNumerically(">", 100))

			drain(c)

			Expect(c.State()).To(Equal(scroll.StateIdle))
			Expect(outer.OffsetY()).To(Equal(500.0))
			Expect(inner.OffsetY()).To(Equal(900.0))
			stops := log.kinds(scroll.EventMomentumStop)
			Expect(stops).To(HaveLen(1))
			Expect(stops[0].Reason).To(Equal(scroll.StopInnerBoundary))
		})

		It("stops when the outer panel reaches the top", func() {
			c.ScrollTo(scroll.Offsets{Outer: 300})
			c.Handle(begin(0))
			c.Handle(changed(100))
			c.Handle(ended(100, 1500))

			drain(c)

			Expect(outer.OffsetY()).To(Equal(0.0))
			stops := log.kinds(scroll.EventMomentumStop)
			Expect(stops).To(HaveLen(1))
			Expect(stops[0].Reason).To(Equal(scroll.StopOuterBoundary))
		})

		It("settles on its own for a slow release", func() {
			c.ScrollTo(scroll.Offsets{Outer: 100})
			c.Handle(begin(0))
			c.Handle(changed(-10))
			c.Handle(ended(-10, -100))

			drain(c)

			// v²/2a = 100²/1996 ≈ 5pt of travel
			Expect(outer.OffsetY()).To(BeNumerically("~", 115, 0.5))
			stops := log.kinds(scroll.EventMomentumStop)
			Expect(stops).To(HaveLen(1))
			Expect(stops[0].Reason).To(Equal(scroll.StopSettled))
		})

		It("uses the configured deceleration rate", func() {
			slow := scroll.NewCoordinator(outer, scroll.WithInnerPanel(inner), scroll.WithDecelerationRate(0.5))
			slow.ScrollTo(scroll.Offsets{Outer: 100})
			slow.Handle(begin(0))
			slow.Handle(ended(-1, -100))

			run, ok := slow.Momentum()
			Expect(ok).To(BeTrue())
			Expect(run.Deceleration).To(Equal(500.0))
			Expect(run.Sign).To(Equal(-1.0))
		})

		It("is cancelled by a new drag", func() {
			c.Handle(begin(0))
			c.Handle(changed(-100))
			c.Handle(ended(-100, -2000))
			c.Tick(frame)

			c.Handle(begin(0))

			Expect(c.State()).To(Equal(scroll.StateDragging))
			stops := log.kinds(scroll.EventMomentumStop)
			Expect(stops).To(HaveLen(1))
			Expect(stops[0].Reason).To(Equal(scroll.StopCancelled))
		})

		It("is skipped when the release has no translation", func() {
			c.Handle(begin(0))
			c.Handle(ended(0, -1500))

			Expect(c.State()).To(Equal(scroll.StateIdle))
			skipped := log.kinds(scroll.EventSkipped)
			Expect(skipped).To(HaveLen(1))
			Expect(skipped[0].Err).To(MatchError(scroll.ErrZeroTranslation))
			Expect(log.kinds(scroll.EventMomentumStart)).To(BeEmpty())
		})
	})

	Describe("without an inner panel", func() {
		BeforeEach(func() {
			c.SetInnerPanel(nil)
		})

		It("treats every update as a no-op", func() {
			Expect(func() {
				c.Handle(begin(0))
				c.Handle(changed(-100))
				c.Handle(ended(-100, -1000))
			}).NotTo(Panic())

			Expect(outer.OffsetY()).To(Equal(0.0))
			Expect(c.State()).To(Equal(scroll.StateIdle))
			for _, e := range log.kinds(scroll.EventSkipped) {
				Expect(e.Err).To(MatchError(scroll.ErrNoInnerPanel))
			}
			_, ok := c.Extents()
			Expect(ok).To(BeFalse())
		})

		It("reports the missing panel from Compute", func() {
			_, err := c.Compute(-10)
			Expect(err).To(MatchError(scroll.ErrNoInnerPanel))
		})
	})

	It("survives the inner panel going away during momentum", func() {
		c.Handle(begin(0))
		c.Handle(changed(-100))
		c.Handle(ended(-100, -800))
		c.Tick(frame)
		c.SetInnerPanel(nil)

		Expect(func() { drain(c) }).NotTo(Panic())
		Expect(c.State()).To(Equal(scroll.StateIdle))
	})

	Describe("rebinding the inner panel during a drag", func() {
		BeforeEach(func() {
			c.Handle(begin(0))
			c.Handle(changed(-300))
			c.Handle(ended(-300, -2000))
			drain(c)
			c.ScrollTo(scroll.Offsets{Outer: 450})
		})

		It("keeps a drag that began unbound a no-op", func() {
			c.SetInnerPanel(nil)
			c.Handle(begin(0))
			c.SetInnerPanel(inner)
			c.Handle(changed(-1))

			Expect(outer.OffsetY()).To(Equal(450.0))
			Expect(inner.OffsetY()).To(Equal(0.0))

			c.Handle(ended(-1, -3000))
			Expect(c.State()).To(Equal(scroll.StateIdle))
			Expect(log.kinds(scroll.EventMomentumStart)).To(HaveLen(1))
		})

		It("scrolls from fresh offsets on the next drag", func() {
			c.SetInnerPanel(nil)
			c.Handle(begin(0))
			c.SetInnerPanel(inner)
			c.Handle(ended(-1, -3000))

			c.Handle(begin(0))
			c.Handle(changed(-10))
			Expect(outer.OffsetY()).To(Equal(460.0))
		})

		It("reports bind and unbind", func() {
			c.SetInnerPanel(nil)
			c.SetInnerPanel(inner)

			Expect(log.kinds(scroll.EventUnbind)).To(HaveLen(1))
			Expect(log.kinds(scroll.EventBind)).To(HaveLen(1))
			Expect(c.InnerPanel()).To(BeIdenticalTo(scroll.InnerPanel(inner)))
		})
	})

	It("ignores frames without elapsed time", func() {
		c.Handle(begin(0))
		c.Handle(ended(-10, -3000))

		c.Tick(0)
		c.Tick(-frame)
		Expect(c.State()).To(Equal(scroll.StateDecelerating))
		Expect(log.kinds(scroll.EventTick)).To(BeEmpty())

		c.Tick(frame)
		Expect(outer.OffsetY()).To(BeNumerically(">", 10))
	})

	Describe("resizing the outer panel", func() {
		It("clamps the offset and reports the new extents", func() {
			c.ScrollTo(scroll.Offsets{Outer: 1100})
			Expect(c.ResizeOuter(2000, 1000)).To(Succeed())

			Expect(outer.OffsetY()).To(Equal(1000.0))
			resized := log.kinds(scroll.EventResize)
			Expect(resized).To(HaveLen(1))
			Expect(resized[0].Extents.OuterViewport).To(Equal(1000.0))
			Expect(resized[0].Extents.InnerFrameTop).To(Equal(500.0))
			Expect(resized[0].Offsets.Outer).To(Equal(1000.0))
		})

		It("rejects panels without Resize", func() {
			fixed := scroll.NewCoordinator(fixedPanel{}, scroll.WithInnerPanel(inner))
			Expect(fixed.ResizeOuter(100, 100)).To(MatchError(scroll.ErrNotResizable))
		})
	})

	Describe("inner lock across drags", func() {
		lockAndMove := func(c *scroll.Coordinator) {
			c.ScrollTo(scroll.Offsets{Outer: 500})
			c.Handle(begin(0))
			c.Handle(changed(-200))
			c.Handle(scroll.Sample{Phase: scroll.PhaseCancelled, TranslationY: -200, VelocityY: -10000})
			drain(c)
			Expect(inner.OffsetY()).To(Equal(900.0))
			inner.Move(600)
		}

		It("carries the lock into the next drag by default", func() {
			lockAndMove(c)
			Expect(c.InnerLocked()).To(BeTrue())

			c.Handle(begin(0))

			Expect(c.InnerLocked()).To(BeTrue())
			Expect(inner.OffsetY()).To(Equal(800.0))
			Expect(outer.OffsetY()).To(Equal(500.0))
		})

		It("releases the lock on begin when configured", func() {
			c = scroll.NewCoordinator(outer, scroll.WithInnerPanel(inner), scroll.WithResetLockOnBegin(true))
			lockAndMove(c)

			c.Handle(begin(0))

			Expect(c.InnerLocked()).To(BeFalse())
			Expect(outer.OffsetY()).To(Equal(600.0))
			Expect(inner.OffsetY()).To(Equal(900.0))
		})
	})

	It("reports geometry and offsets", func() {
		ext, ok := c.Extents()
		Expect(ok).To(BeTrue())
		Expect(ext.OuterMax()).To(Equal(1200.0))
		Expect(ext.InnerMax()).To(Equal(900.0))
		Expect(ext.InnerFrameTop).To(Equal(500.0))

		c.ScrollTo(scroll.Offsets{Outer: 5000, Inner: -3})
		Expect(c.Offsets()).To(Equal(scroll.Offsets{Outer: 1200, Inner: 0}))
		Expect(log.kinds(scroll.EventReset)).To(HaveLen(1))
	})
})

var _ = Describe("Phase", func() {
	DescribeTable("round trips through its name",
		func(p scroll.Phase, name string) {
			Expect(p.String()).To(Equal(name))
			parsed, ok := scroll.ParsePhase(name)
			Expect(ok).To(BeTrue())
			Expect(parsed).To(Equal(p))
		},
		Entry("begin", scroll.PhaseBegin, "begin"),
		Entry("changed", scroll.PhaseChanged, "changed"),
		Entry("cancelled", scroll.PhaseCancelled, "cancelled"),
		Entry("ended", scroll.PhaseEnded, "ended"),
	)

	It("rejects unknown names", func() {
		_, ok := scroll.ParsePhase("hover")
		Expect(ok).To(BeFalse())
	})
})
