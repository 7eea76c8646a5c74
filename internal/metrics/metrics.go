package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/urlcheck/internal/domain"
)

// Observer records every status as Prometheus metrics.
type Observer struct {
	registry *prometheus.Registry

	probesTotal      *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	up               prometheus.Gauge
	latency          prometheus.Histogram
	lastProbe        prometheus.Gauge
}

func New() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlcheck_probes_total",
				Help: "Probes performed, by result",
			},
			[]string{"result"},
		),
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlcheck_transitions_total",
				Help: "Availability changes announced, by new state",
			},
			[]string{"to"},
		),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "urlcheck_target_up",
			Help: "1 if the last probe succeeded, 0 otherwise",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "urlcheck_probe_latency_seconds",
			Help:    "Probe latency including connection teardown",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		lastProbe: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "urlcheck_last_probe_timestamp_seconds",
			Help: "Unix time of the last probe",
		}),
	}
	o.registry.MustRegister(o.probesTotal, o.transitionsTotal, o.up, o.latency, o.lastProbe)
	return o
}

func (o *Observer) OnStatus(st domain.Status) {
	result, to := "failure", "down"
	if st.Success {
		result, to = "success", "up"
		o.up.Set(1)
	} else {
		o.up.Set(0)
	}
	o.probesTotal.WithLabelValues(result).Inc()
	if !st.Silent {
		o.transitionsTotal.WithLabelValues(to).Inc()
	}
	o.latency.Observe(float64(st.Outcome.LatencyMS) / 1000)
	if !st.Outcome.Timestamp.IsZero() {
		o.lastProbe.Set(float64(st.Outcome.Timestamp.UnixNano()) / 1e9)
	}
}

func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func (o *Observer) Registry() *prometheus.Registry { return o.registry }
