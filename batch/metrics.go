package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "pph21"
	subsystem = "batch"

	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics tracks batch runs.
type Metrics struct {
	CyclesProcessed    *prometheus.CounterVec
	EmployeesProcessed prometheus.Counter
	TaxWithheld        prometheus.Counter
	TaxRefunded        prometheus.Counter
	CycleDuration      prometheus.Histogram
}

// NewMetrics creates the batch metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cycles_processed_total",
				Help:      "Payroll cycles processed, by outcome",
			},
			[]string{"outcome"},
		),
		EmployeesProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "employees_processed_total",
				Help:      "Employees whose cycles all completed",
			},
		),
		TaxWithheld: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tax_withheld_idr_total",
				Help:      "Monthly PPh21 withheld across cycles, in rupiah",
			},
		),
		TaxRefunded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tax_refunded_idr_total",
				Help:      "Negative monthly PPh21 adjustments across cycles, in rupiah",
			},
		),
		CycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cycle_duration_seconds",
				Help:      "Time to compute one payroll cycle",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
}
