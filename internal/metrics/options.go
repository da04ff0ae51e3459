package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option applies a configuration option to the Collector.
type Option func(*Collector)

func WithNamespace(namespace string) Option {
	return func(c *Collector) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Collector) {
		if subsystem != "" {
			c.subsystem = subsystem
		}
	}
}

// WithRegistry registers the collectors on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Collector) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithVelocityBuckets sets the release velocity histogram buckets (points/s).
func WithVelocityBuckets(buckets []float64) Option {
	return func(c *Collector) {
		if len(buckets) > 0 {
			c.velocityBuckets = buckets
		}
	}
}
