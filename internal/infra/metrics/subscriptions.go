package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"prime-fitness-backend/internal/domain/model"
)

func init() {
	register(
		promoRedemptionsTotal,
		purchasesVerifiedTotal,
		subscriptionsExpiredTotal,
		subscriptionsTotal,
	)
}

var (
	promoRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Promo redemption attempts by result.",
		},
		[]string{"result"}, // 'ok', 'invalid_code', 'already_redeemed', 'limit_reached', ...
	)

	purchasesVerifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_verified_total",
			Help: "Verified purchase transactions by source.",
		},
		[]string{"source"}, // 'appstore', 'googleplay', 'web', 'promo'
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions flipped to expired by the grace sweep.",
		},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"}, // 'active', 'canceled', 'grace', 'expired'
	)
)

func IncPromoRedemption(result string) {
	promoRedemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func IncPurchaseVerified(source string) {
	purchasesVerifiedTotal.WithLabelValues(norm(source)).Inc()
}

func IncSubscriptionsExpired(count int) {
	subscriptionsExpiredTotal.Add(float64(count))
}

func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusActive,
		model.SubscriptionStatusCanceled,
		model.SubscriptionStatusGrace,
		model.SubscriptionStatusExpired,
	}
	for _, status := range statuses {
		if count, ok := counts[status]; ok {
			subscriptionsTotal.WithLabelValues(string(status)).Set(float64(count))
		}
	}
}
