package pow

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// powHashRate 最近一轮的算力（Gauge，H/s）
	powHashRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "metaminer_pow_hash_rate",
			Help: "最近一轮记录的算力（H/s）",
		},
	)

	// powHashesTotal 已尝试的哈希总数（Counter）
	powHashesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metaminer_pow_hashes_total",
			Help: "已派发并完成的哈希尝试总数",
		},
	)

	// powRoundsTotal 搜索结束次数（Counter）
	powRoundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metaminer_pow_searches_total",
			Help: "搜索结束次数",
		},
		[]string{"outcome"}, // outcome: found, cancelled, aborted
	)

	// powWorkerFaultsTotal 工作者故障次数（Counter）
	powWorkerFaultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metaminer_pow_worker_faults_total",
			Help: "工作者故障次数",
		},
	)
)

func init() {
	prometheus.MustRegister(powHashRate, powHashesTotal, powRoundsTotal, powWorkerFaultsTotal)
}
