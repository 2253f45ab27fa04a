package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bid_market/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

//nolint:gochecknoglobals
var bidsPlaced = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bids_placed_total",
	Help: "Bids accepted through the HTTP API.",
})
