package toolset

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics exposes toolset state on reg and keeps it current through a
// subscription on m. The returned func stops the subscription.
func RegisterMetrics(m *Manager, reg prometheus.Registerer) (func(), error) {
	sets := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "scened",
			Subsystem: "toolset",
			Name:      "keys",
			Help:      "Number of toolset keys per state",
		},
		[]string{"state"},
	)
	results := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scened",
			Subsystem: "toolset",
			Name:      "loads_total",
			Help:      "Completed toolset loads by key and result",
		},
		[]string{"key", "result"},
	)
	for _, c := range []prometheus.Collector{sets, results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	prev := m.Snapshot()
	observe := func(s State) {
		mu.Lock()
		defer mu.Unlock()
		sets.WithLabelValues("loaded").Set(float64(len(s.Loaded)))
		sets.WithLabelValues("loading").Set(float64(len(s.Loading)))
		sets.WithLabelValues("failed").Set(float64(len(s.Failed)))
		for _, k := range entered(prev.Loaded, s.Loaded) {
			results.WithLabelValues(k, "success").Inc()
		}
		for _, k := range entered(prev.Failed, s.Failed) {
			results.WithLabelValues(k, "failure").Inc()
		}
		prev = s
	}
	observe(prev)
	return m.Subscribe(observe), nil
}

// entered returns keys present in next but not in prev.
func entered(prev, next []string) []string {
	had := make(map[string]bool, len(prev))
	for _, k := range prev {
		had[k] = true
	}
	var out []string
	for _, k := range next {
		if !had[k] {
			out = append(out, k)
		}
	}
	return out
}
