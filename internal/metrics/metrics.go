package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/restohub/backend/internal/availability"
)

var (
	once sync.Once

	resolutions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restohub",
			Name:      "availability_resolutions_total",
			Help:      "Count of availability resolutions.",
		},
	)

	resolvedPoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restohub",
			Name:      "availability_points_total",
			Help:      "Count of resolved time points by availability.",
		},
		[]string{"available"},
	)

	skippedExceptions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restohub",
			Name:      "availability_skipped_exceptions_total",
			Help:      "Count of active exceptions ignored because they are malformed or of unknown type.",
		},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restohub",
			Name:      "booking_requests_total",
			Help:      "Count of booking requests by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register 注册所有指标，可以重复调用
func Register() {
	once.Do(func() {
		prometheus.MustRegister(resolutions, resolvedPoints, skippedExceptions, bookings)
	})
}

func ObserveResolution(groups []availability.ServiceGroup, skipped int) {
	resolutions.Inc()

	for _, g := range groups {
		for _, p := range g.TimePoints {
			if p.IsAvailable {
				resolvedPoints.WithLabelValues("true").Inc()
			} else {
				resolvedPoints.WithLabelValues("false").Inc()
			}
		}
	}

	skippedExceptions.Add(float64(skipped))
}

const (
	BookingConfirmed = "confirmed"
	BookingClosed    = "closed"
	BookingFull      = "full"
	BookingLocked    = "locked"
	BookingCancelled = "cancelled"
)

func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}
