package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CheckIns  *prometheus.CounterVec
	Checkouts *prometheus.CounterVec
}

// NewRegistry holds this service's own counters. Go runtime, process and
// gorm pool stats stay on the default registry; the /metrics handler
// gathers both, and tests get isolated counter state.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parkinglot_checkins_total",
			Help: "Vehicles checked in, by vehicle type.",
		}, []string{"vehicle_type"}),
		Checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parkinglot_checkouts_total",
			Help: "Confirmed checkouts, by payment method.",
		}, []string{"method"}),
	}
}
