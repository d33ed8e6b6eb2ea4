package auction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var auctionTimeHistogramVec = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "auction_functions_time",
		Help:    "Auction engine functions execution duration distribution in seconds",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 1},
	},
	[]string{"method"},
)

var parkedRefundsCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "auction_parked_refunds_total",
	Help: "Number of refunds that could not be delivered and were parked as pending withdrawals",
})

func observe(method string) *prometheus.Timer {
	return prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		auctionTimeHistogramVec.WithLabelValues(method).Observe(v)
	}))
}
