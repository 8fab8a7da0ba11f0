package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	// roundsTotal 挖矿轮次结果（Counter）
	roundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaminer_miner_rounds_total",
			Help: "挖矿轮次总数",
		},
		[]string{"outcome"}, // outcome: accepted, stale
	)

	// submissionsTotal 提交结果（Counter）
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaminer_miner_submissions_total",
			Help: "nonce 提交总数",
		},
		[]string{"result"}, // result: accepted, rejected, unavailable
	)

	// solveSeconds 从抓取状态到提交被接受的耗时（Histogram，秒）
	solveSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metaminer_miner_solve_seconds",
			Help:    "被接受轮次的求解耗时（秒）",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
		},
	)
)

func init() {
	prometheus.MustRegister(roundsTotal, submissionsTotal, solveSeconds)
}
