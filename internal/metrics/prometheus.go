// Package metrics exposes Prometheus instrumentation for the node, the same
// promauto-vector style as the teacher's HTTP middleware, retargeted from
// routes to line-protocol opcodes and connections.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2pbank_commands_total",
			Help: "Total number of line-protocol commands processed, by opcode and outcome.",
		},
		[]string{"opcode", "outcome"}, // outcome: ok, error
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "p2pbank_command_duration_seconds",
			Help:    "Duration of command dispatch in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"opcode"},
	)

	AccountBalances = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "p2pbank_account_balance_cents",
			Help:    "Distribution of account balances in cents.",
			Buckets: []float64{0, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "p2pbank_active_connections",
			Help: "Number of currently open client sessions.",
		},
	)

	ProxyHopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "p2pbank_proxy_hops_total",
			Help: "Total number of outbound proxy hops, by outcome.",
		},
		[]string{"outcome"}, // outcome: ok, error
	)

	ProxyHopDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "p2pbank_proxy_hop_duration_seconds",
			Help:    "Duration of outbound proxy hops in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
