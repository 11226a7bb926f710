package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideway", Name: "rides_created_total", Help: "Total rides created"})

	DispatchOffersTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideway", Name: "dispatch_offers_total", Help: "Total new-ride offers sent to captains"})
	DispatchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideway", Name: "dispatch_failures_total", Help: "Offer sends that failed"})

	FareFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideway", Name: "fare_fallback_total", Help: "Fare estimates served by the haversine fallback"})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "rideway", Name: "ws_connected_clients", Help: "Currently connected WebSocket clients"})
)
