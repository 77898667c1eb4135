package manager

import "github.com/prometheus/client_golang/prometheus"

// PromPublisher counts events by name and tracks the warm set size.
type PromPublisher struct {
	events *prometheus.CounterVec
	warm   prometheus.Gauge
}

// NewPromPublisher registers the cache collectors on reg.
func NewPromPublisher(reg prometheus.Registerer) (*PromPublisher, error) {
	p := &PromPublisher{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scened",
				Subsystem: "cache",
				Name:      "events_total",
				Help:      "Warm cache lifecycle events by name",
			},
			[]string{"event"},
		),
		warm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scened",
			Subsystem: "cache",
			Name:      "warm_scenes",
			Help:      "Number of warm scenes",
		}),
	}
	for _, c := range []prometheus.Collector{p.events, p.warm} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PromPublisher) Publish(e Event) {
	p.events.WithLabelValues(e.Name).Inc()
	if n, ok := e.Fields["warm"].(int); ok {
		p.warm.Set(float64(n))
	}
}
