package metrics

import (
	"errors"

	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder records annealing telemetry in Prometheus metrics
type PromRecorder struct {
	temperature prometheus.Gauge
	cost        prometheus.Gauge
	coolings    prometheus.Counter
	runs        *prometheus.CounterVec
	iterations  prometheus.Histogram
	duration    prometheus.Histogram
	finalCost   prometheus.Histogram
}

// NewPromRecorder registers the search metrics on reg. If reg is nil, the default
// registerer is used. Collectors already registered are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	recorder := &PromRecorder{
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "examsched_temperature",
			Help: "Temperature reached by the last cooling step",
		}),
		cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "examsched_cost",
			Help: "Cost of the current schedule after the last cooling step",
		}),
		coolings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "examsched_cooling_steps_total",
			Help: "Total number of cooling steps",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examsched_runs_total",
			Help: "Total number of finished annealing runs",
		}, []string{"outcome", "reason"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "examsched_run_iterations",
			Help:    "Moves tried by each run",
			Buckets: prometheus.ExponentialBuckets(10, 4, 10),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "examsched_run_duration_seconds",
			Help:    "Wall-clock duration of each run",
			Buckets: prometheus.DefBuckets,
		}),
		finalCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "examsched_run_final_cost",
			Help:    "Cost of the schedule returned by each run",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
	}

	var err error
	if recorder.temperature, err = register(reg, recorder.temperature); err != nil {
		return nil, err
	}
	if recorder.cost, err = register(reg, recorder.cost); err != nil {
		return nil, err
	}
	if recorder.coolings, err = register(reg, recorder.coolings); err != nil {
		return nil, err
	}
	if recorder.runs, err = register(reg, recorder.runs); err != nil {
		return nil, err
	}
	if recorder.iterations, err = register(reg, recorder.iterations); err != nil {
		return nil, err
	}
	if recorder.duration, err = register(reg, recorder.duration); err != nil {
		return nil, err
	}
	if recorder.finalCost, err = register(reg, recorder.finalCost); err != nil {
		return nil, err
	}
	return recorder, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (r *PromRecorder) ObserveTemperature(temperature float64, cost int) {
	r.temperature.Set(temperature)
	r.cost.Set(float64(cost))
	r.coolings.Inc()
}

func (r *PromRecorder) ObserveResult(result model.Result) {
	r.runs.WithLabelValues(result.Outcome.String(), string(result.Reason)).Inc()
	r.iterations.Observe(float64(result.Iterations))
	r.duration.Observe(result.Duration.Seconds())
	r.finalCost.Observe(float64(result.Cost))
}

// WriteTextfile gathers g and writes it in the text exposition format, ready for
// the node exporter textfile collector
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

var _ model.Recorder = (*PromRecorder)(nil)
