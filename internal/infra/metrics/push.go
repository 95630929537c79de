package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pushDeliveriesTotal) }

var pushDeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "push_deliveries_total",
		Help: "Push notification delivery attempts by kind and result.",
	},
	[]string{"kind", "result"}, // e.g., kind="streak_save", result="sent"
)

func IncPushSent(kind string) {
	pushDeliveriesTotal.WithLabelValues(norm(kind), "sent").Inc()
}

func IncPushFailed(kind string) {
	pushDeliveriesTotal.WithLabelValues(norm(kind), "failed").Inc()
}
