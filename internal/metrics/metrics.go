package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PriceCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "price_corrections_total",
		Help:      "Cart item prices outside the allowed bound that were reset to the base price.",
	})
	CartRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "storage_reads_total",
		Help:      "Guest cart reads by stored format.",
	}, []string{"format"})
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"policy"})
	AmountMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "order",
		Name:      "amount_mismatches_total",
		Help:      "Payment order requests whose amount did not match the catalog total.",
	})
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "order",
		Name:      "created_total",
		Help:      "Orders persisted after payment confirmation.",
	}, []string{"owner"})
)
