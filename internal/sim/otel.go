package sim

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/Ru51kXD/Likvi/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type sessionMetrics struct {
	ticks       metric.Int64Counter
	evaluations metric.Int64Counter
	crashes     metric.Int64Counter
	resets      metric.Int64Counter
}

// newSessionMetrics creates the session counters. Any instrument the meter
// refuses is replaced by a no-op so ticking never depends on telemetry.
func newSessionMetrics(m metric.Meter) (*sessionMetrics, error) {
	if m == nil {
		m = meter()
	}
	var firstErr error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return noop.Int64Counter{}
		}
		return c
	}
	sm := &sessionMetrics{
		ticks:       counter("sim.ticks", "Fixed simulation steps executed"),
		evaluations: counter("sim.collision.evaluations", "Collision candidate scans performed"),
		crashes:     counter("sim.crashes", "Flights ended by a collision"),
		resets:      counter("sim.resets", "Flight resets"),
	}
	return sm, firstErr
}
