package solver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	evaluationFull   = "full"
	evaluationNurses = "nurses"
)

// Metrics encapsulates Prometheus instrumentation of evaluations and searches. A nil *Metrics records nothing
type Metrics struct {
	registry            *prometheus.Registry
	handler             http.Handler
	evaluations         *prometheus.CounterVec
	evaluationDuration  *prometheus.HistogramVec
	repairs             *prometheus.CounterVec
	unscheduled         prometheus.Counter
	acceptedNurseSwaps  prometheus.Counter
	generations         prometheus.Counter
	bestHardConstraints prometheus.Gauge
	bestSoftConstraints prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ihtp_evaluations_total",
		Help: "Total number of evaluations by kind",
	}, []string{"kind"})

	evaluationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ihtp_evaluation_duration_seconds",
		Help:    "Duration of evaluations in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"kind"})

	repairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ihtp_repairs_total",
		Help: "Total number of repair attempts by policy and outcome",
	}, []string{"policy", "outcome"})

	unscheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ihtp_unscheduled_patients_total",
		Help: "Total number of patients left unscheduled after a failed repair",
	})

	acceptedNurseSwaps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ihtp_nurse_swaps_accepted_total",
		Help: "Total number of improving nurse block swaps",
	})

	generations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ihtp_generations_total",
		Help: "Total number of completed search generations",
	})

	bestHardConstraints := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ihtp_best_hard_constraints",
		Help: "Hard constraint violations of the best solution found",
	})

	bestSoftConstraints := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ihtp_best_soft_constraints",
		Help: "Soft constraint penalty of the best solution found",
	})

	registry.MustRegister(evaluations, evaluationDuration, repairs, unscheduled, acceptedNurseSwaps, generations, bestHardConstraints, bestSoftConstraints)

	return &Metrics{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		evaluations:         evaluations,
		evaluationDuration:  evaluationDuration,
		repairs:             repairs,
		unscheduled:         unscheduled,
		acceptedNurseSwaps:  acceptedNurseSwaps,
		generations:         generations,
		bestHardConstraints: bestHardConstraints,
		bestSoftConstraints: bestSoftConstraints,
	}
}

// Handler exposes the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) observeEvaluation(kind string, start time.Time) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(kind).Inc()
	m.evaluationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordRepair(policy string, repaired bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if repaired {
		outcome = "repaired"
	} else {
		m.unscheduled.Inc()
	}
	m.repairs.WithLabelValues(policy, outcome).Inc()
}

func (m *Metrics) recordAcceptedSwap() {
	if m == nil {
		return
	}
	m.acceptedNurseSwaps.Inc()
}

// RecordGeneration is called by search drivers once per completed generation with the best fitness so far
func (m *Metrics) RecordGeneration(best Fitness) {
	if m == nil {
		return
	}
	m.generations.Inc()
	m.bestHardConstraints.Set(float64(best.Hard))
	m.bestSoftConstraints.Set(float64(best.Soft))
}
