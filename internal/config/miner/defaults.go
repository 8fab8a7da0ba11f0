package miner

import "time"

const (
	// defaultWorkers 并行工作者数量
	defaultWorkers = 8

	// defaultBatchSize 每个工作者每批尝试次数
	// 一批的耗时决定了取消的响应延迟
	defaultBatchSize uint64 = 100_000

	// defaultPollInterval 过期检测间隔
	defaultPollInterval = 3000 * time.Millisecond

	// defaultInitialNonceBits 每轮随机起点取自 [0, 2^40)
	// 多个矿工进程同时搜索时避免重复覆盖同一区间
	defaultInitialNonceBits = 40
	maxInitialNonceBits     = 63

	// defaultRetryDelay 轮次之间以及出错后的固定等待
	defaultRetryDelay = 100 * time.Millisecond

	defaultStopTimeout = 30 * time.Second

	// defaultPayloadSize 未配置固定负载时每轮随机生成的字节数
	defaultPayloadSize = 256

	defaultAutoStart = true
)
