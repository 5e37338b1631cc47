// Package metrics provides Prometheus instrumentation for entrawatch.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/entrawatch/internal/check"
)

// Collector translates a snapshot into Prometheus gauge values.
type Collector struct {
	serviceState    *prometheus.GaugeVec
	serviceValue    *prometheus.GaugeVec
	servicesTotal   *prometheus.GaugeVec
	sectionErrors   *prometheus.GaugeVec
	collectDuration prometheus.Gauge
	lastRun         prometheus.Gauge
	mu              sync.Mutex
}

// NewCollector creates and registers metrics on the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		serviceState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "entrawatch",
			Name:      "service_state",
			Help:      "Monitoring state of the service (0=ok, 1=warn, 2=crit, 3=unknown).",
		}, []string{"section", "service"}),

		serviceValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "entrawatch",
			Name:      "service_value_seconds",
			Help:      "Measured value of the service: remaining credential validity, or elapsed time since the last directory sync.",
		}, []string{"section", "service", "metric"}),

		servicesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "entrawatch",
			Name:      "services_total",
			Help:      "Number of evaluated services by state.",
		}, []string{"state"}),

		sectionErrors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "entrawatch",
			Name:      "section_errors",
			Help:      "Whether collecting or parsing the section failed (1=failed).",
		}, []string{"section"}),

		collectDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "entrawatch",
			Name:      "collect_duration_seconds",
			Help:      "Duration of the last collection cycle in seconds.",
		}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "entrawatch",
			Name:      "last_run_timestamp",
			Help:      "Unix timestamp of the last completed evaluation.",
		}),
	}

	reg.MustRegister(c.serviceState)
	reg.MustRegister(c.serviceValue)
	reg.MustRegister(c.servicesTotal)
	reg.MustRegister(c.sectionErrors)
	reg.MustRegister(c.collectDuration)
	reg.MustRegister(c.lastRun)

	return c
}

// Update replaces all metric values from the given snapshot.
func (c *Collector) Update(snap check.Snapshot, collectDuration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.serviceState.Reset()
	c.serviceValue.Reset()
	c.servicesTotal.Reset()
	c.sectionErrors.Reset()

	c.collectDuration.Set(collectDuration.Seconds())
	c.lastRun.Set(float64(snap.At.Unix()))

	for i := range snap.Outcomes {
		o := &snap.Outcomes[i]

		c.serviceState.With(prometheus.Labels{
			"section": o.Section,
			"service": o.Service,
		}).Set(float64(o.Outcome.State))

		if m := o.Outcome.Metric; m != nil {
			c.serviceValue.With(prometheus.Labels{
				"section": o.Section,
				"service": o.Service,
				"metric":  m.Name,
			}).Set(m.Value)
		}
	}

	for state, count := range snap.Counts() {
		c.servicesTotal.With(prometheus.Labels{"state": state.String()}).Set(float64(count))
	}

	for sectionName := range snap.Errors {
		c.sectionErrors.With(prometheus.Labels{"section": sectionName}).Set(1)
	}
}
