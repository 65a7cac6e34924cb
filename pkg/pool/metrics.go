package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// poolOpen tracks currently open sessions (checked out plus idle).
	poolOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mssqlclient_pool_open_connections",
			Help: "Open sessions held by the pool, checked out or idle",
		},
	)

	// poolIdle tracks sessions parked in the idle list.
	poolIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mssqlclient_pool_idle_connections",
			Help: "Idle sessions available for checkout",
		},
	)

	// checkoutsTotal counts successful Get calls.
	checkoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mssqlclient_pool_checkouts_total",
			Help: "Total number of successful connection checkouts",
		},
	)

	// dialsTotal counts new sessions established by the pool.
	dialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mssqlclient_pool_dials_total",
			Help: "Total number of new sessions dialed",
		},
	)

	// discardsTotal counts sessions dropped on Put because they were no
	// longer usable.
	discardsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mssqlclient_pool_discards_total",
			Help: "Total number of returned sessions discarded as unusable",
		},
	)

	// evictionsTotal counts idle sessions closed by the idle-timeout sweep.
	evictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mssqlclient_pool_evictions_total",
			Help: "Total number of idle sessions evicted after idle_timeout",
		},
	)
)
