package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var openConnections = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "streaming_api_open_connections",
		Help: "Currently open bid-stream connections by transport",
	},
	[]string{
		"type",
	},
)

func OpenWebsocketConnection() {
	openConnections.WithLabelValues("websocket").Inc()
}

func CloseWebsocketConnection() {
	openConnections.WithLabelValues("websocket").Dec()
}

func OpenSseConnection() {
	openConnections.WithLabelValues("sse").Inc()
}

func CloseSseConnection() {
	openConnections.WithLabelValues("sse").Dec()
}
