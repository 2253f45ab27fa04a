package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	bidEventsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bid_events_consumed_total",
		Help: "Bid-insert events consumed from the realtime channel.",
	})

	bidEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bid_events_dropped_total",
		Help: "Bid-insert events dropped because the payload did not decode.",
	})

	readMarkerUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "read_marker_upserts_total",
		Help: "Read-marker upsert tasks processed, by result.",
	}, []string{"result"})
)
