package staleness

import "github.com/prometheus/client_golang/prometheus"

var staleDetected = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "metaminer_miner_stale_total",
		Help: "搜索期间检测到链状态变化的次数",
	},
)

func init() {
	prometheus.MustRegister(staleDetected)
}
