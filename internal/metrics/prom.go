package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/mat"
)

// Exporter mirrors a run into Prometheus collectors on a private registry.
// It is a sim.Observer; attach it before the run to count steps.
type Exporter struct {
	reg      *prometheus.Registry
	steps    prometheus.Counter
	values   *prometheus.GaugeVec
	radius   prometheus.Gauge
	duration prometheus.Histogram
}

func NewExporter() *Exporter {
	e := &Exporter{
		reg: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ssmsim_steps_total",
			Help: "Recurrence steps taken (t >= 1).",
		}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ssmsim_run_metric",
			Help: "Final value of a run metric.",
		}, []string{"metric"}),
		radius: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ssmsim_spectral_radius",
			Help: "Spectral radius of A.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ssmsim_run_duration_seconds",
			Help:    "Wall time of a simulation run.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
		}),
	}
	e.reg.MustRegister(e.steps, e.values, e.radius, e.duration)
	return e
}

func (e *Exporter) OnStep(t int, x mat.Vector, u, y float64) {
	if t > 0 {
		e.steps.Inc()
	}
}

// Record stores the end-of-run values.
func (e *Exporter) Record(values map[string]float64, spectralRadius float64, elapsed time.Duration) {
	for name, v := range values {
		e.values.WithLabelValues(name).Set(v)
	}
	e.radius.Set(spectralRadius)
	e.duration.Observe(elapsed.Seconds())
}

func (e *Exporter) Registry() *prometheus.Registry { return e.reg }

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.reg)
}
