package metrics

import (
	"errors"
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/nestscroll/internal/scroll"
)

// Collector exports coordinator events as Prometheus metrics.
type Collector struct {
	namespace       string
	subsystem       string
	velocityBuckets []float64
	registry        *prometheus.Registry

	gestures       *prometheus.CounterVec
	handoffs       prometheus.Counter
	handbacks      prometheus.Counter
	momentumRuns   prometheus.Counter
	momentumStops  *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	momentumFrames prometheus.Counter
	releaseSpeed   prometheus.Histogram
	outerOffset    prometheus.Gauge
	innerOffset    prometheus.Gauge
	innerLocked    prometheus.Gauge
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		namespace:       "nestscroll",
		subsystem:       "coordinator",
		velocityBuckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
	}

	c.gestures = prometheus.NewCounterVec(c.counterOpts("gesture_samples_total", "Drag samples handled, by phase."), []string{"phase"})
	c.handoffs = prometheus.NewCounter(c.counterOpts("handoffs_total", "Transfers of control to the inner panel."))
	c.handbacks = prometheus.NewCounter(c.counterOpts("handbacks_total", "Transfers of control back to the outer panel."))
	c.momentumRuns = prometheus.NewCounter(c.counterOpts("momentum_runs_total", "Momentum runs started."))
	c.momentumStops = prometheus.NewCounterVec(c.counterOpts("momentum_stops_total", "Momentum runs ended, by reason."), []string{"reason"})
	c.skipped = prometheus.NewCounterVec(c.counterOpts("skipped_total", "Updates that were no-ops, by cause."), []string{"cause"})
	c.momentumFrames = prometheus.NewCounter(c.counterOpts("momentum_frames_total", "Momentum frames applied."))
	c.releaseSpeed = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Subsystem: c.subsystem,
		Name:      "release_speed_points_per_second",
		Help:      "Absolute drag velocity when momentum starts.",
		Buckets:   c.velocityBuckets,
	})
	c.outerOffset = prometheus.NewGauge(c.gaugeOpts("outer_offset_points", "Current outer panel offset."))
	c.innerOffset = prometheus.NewGauge(c.gaugeOpts("inner_offset_points", "Current inner panel offset."))
	c.innerLocked = prometheus.NewGauge(c.gaugeOpts("inner_locked", "1 while the inner panel is the scroll target."))

	c.registry.MustRegister(
		c.gestures, c.handoffs, c.handbacks, c.momentumRuns, c.momentumStops,
		c.skipped, c.momentumFrames, c.releaseSpeed, c.outerOffset, c.innerOffset, c.innerLocked,
	)
	return c
}

func (c *Collector) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: c.namespace, Subsystem: c.subsystem, Name: name, Help: help}
}

func (c *Collector) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: c.namespace, Subsystem: c.subsystem, Name: name, Help: help}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Observe(e scroll.Event) {
	switch e.Kind {
	case scroll.EventGesture:
		c.gestures.WithLabelValues(e.Sample.Phase.String()).Inc()
	case scroll.EventTick:
		c.momentumFrames.Inc()
	case scroll.EventHandoff:
		c.handoffs.Inc()
	case scroll.EventHandback:
		c.handbacks.Inc()
	case scroll.EventMomentumStart:
		c.momentumRuns.Inc()
		c.releaseSpeed.Observe(math.Abs(e.Sample.VelocityY))
	case scroll.EventMomentumStop:
		c.momentumStops.WithLabelValues(string(e.Reason)).Inc()
	case scroll.EventSkipped:
		c.skipped.WithLabelValues(skipCause(e.Err)).Inc()
	}

	if e.Kind == scroll.EventSkipped {
		return
	}
	c.outerOffset.Set(e.Offsets.Outer)
	c.innerOffset.Set(e.Offsets.Inner)
	if e.Locked {
		c.innerLocked.Set(1)
	} else {
		c.innerLocked.Set(0)
	}
}

func skipCause(err error) string {
	switch {
	case errors.Is(err, scroll.ErrNoInnerPanel):
		return "no_inner_panel"
	case errors.Is(err, scroll.ErrZeroTranslation):
		return "zero_translation"
	default:
		return "other"
	}
}
