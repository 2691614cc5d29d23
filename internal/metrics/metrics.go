package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "weather_ingest"

// Run results recorded against the runs counter.
const (
	ResultSuccess     = "success"
	ResultConfigError = "config_error"
	ResultFetchError  = "fetch_error"
	ResultSinkError   = "sink_error"
)

// Pipeline stages recorded against the duration histogram.
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StagePersist   = "persist"
)

// Collector gathers the metrics of one process on its own registry. The job
// runs to completion, so nothing scrapes it — metrics leave through Push.
type Collector struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	stage    *prometheus.HistogramVec
	fallback *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Ingestion cycles by result",
			},
			[]string{"result"},
		),
		stage: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Latency of each pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		fallback: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_fallbacks_total",
				Help:      "Record fields degraded to their placeholder",
			},
			[]string{"field"},
		),
	}

	reg.MustRegister(
		c.runs,
		c.stage,
		c.fallback,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) IncRun(result string) {
	c.runs.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stage.WithLabelValues(stage).Observe(d.Seconds())
}

func (c *Collector) IncFallback(field string) {
	c.fallback.WithLabelValues(field).Inc()
}

// Push delivers everything collected so far to the Pushgateway at addr,
// grouped under one job name.
func (c *Collector) Push(addr string) error {
	return push.New(addr, namespace).Gatherer(c.registry).Push()
}
