package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docmanage",
		Name:      "sheet_refresh_total",
		Help:      "Total number of sheet refresh attempts",
	})
	refreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docmanage",
		Name:      "sheet_refresh_failures_total",
		Help:      "Total number of sheet refresh attempts that failed at the fetch boundary",
	})
	patientCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "docmanage",
		Name:      "patients",
		Help:      "Current size of the canonical patient set",
	})
)
