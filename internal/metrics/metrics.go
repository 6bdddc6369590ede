package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChainHeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "batcoin",
		Name:      "chain_height",
		Help:      "Main chain length from genesis to tip, per node.",
	}, []string{"node"})

	MempoolSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "batcoin",
		Name:      "mempool_size",
		Help:      "Pending transactions awaiting inclusion, per node.",
	}, []string{"node"})

	OrphansParked = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "batcoin",
		Name:      "orphans_parked",
		Help:      "Blocks parked without a known parent, per node.",
	}, []string{"node"})

	ActiveNodes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "batcoin",
		Name:      "active_nodes",
		Help:      "Number of node goroutines still running their event loop.",
	})

	BlocksMined = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "batcoin",
		Name:      "blocks_mined_total",
		Help:      "Blocks successfully mined, per node.",
	}, []string{"node"})

	BlocksRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "batcoin",
		Name:      "blocks_rejected_total",
		Help:      "Blocks that failed validate_block, per node.",
	}, []string{"node"})

	ReorgsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "batcoin",
		Name:      "reorgs_total",
		Help:      "Main-tip reorganizations observed, per node.",
	}, []string{"node"})

	TransactionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "batcoin",
		Name:      "transactions_rejected_total",
		Help:      "Transactions that failed validate_transaction, per node.",
	}, []string{"node"})
)

func init() {
	prometheus.MustRegister(
		ChainHeight,
		MempoolSize,
		OrphansParked,
		ActiveNodes,
		BlocksMined,
		BlocksRejected,
		ReorgsTotal,
		TransactionsRejected,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
