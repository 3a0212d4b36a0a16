package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mission_dispatch", Name: "offers_total",
		Help: "Offers sent to candidate drivers",
	})
	AssignmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mission_dispatch", Name: "assignments_total",
		Help: "Missions that reached ASSIGNED",
	})
	DeclinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mission_dispatch", Name: "declines_total",
		Help: "Offers declined by drivers",
	})
	OfferTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mission_dispatch", Name: "offer_timeouts_total",
		Help: "Offers that expired without a response",
	})
	AssignmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mission_dispatch", Name: "assignment_failures_total",
		Help: "Assignment rounds that ended in a failure terminal",
	}, []string{"reason"})

	DriversOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mission_dispatch", Name: "drivers_online",
		Help: "Currently connected drivers",
	})
	RetryQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mission_dispatch", Name: "retry_queue_depth",
		Help: "Pending driver-reachable events",
	})

	BulkheadRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mission_dispatch", Name: "bulkhead_rejects_total",
		Help: "Requests rejected because a handler pool was full",
	}, []string{"pool"})
)
