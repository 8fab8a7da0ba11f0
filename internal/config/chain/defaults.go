package chain

import (
	"math/big"
	"time"
)

const (
	defaultType      = TypeMemory
	defaultEndpoint  = "http://127.0.0.1:8545"
	defaultNamespace = "mining"

	// defaultTimeout 单次预言机调用的上限；过期检测每个 tick 也受它约束
	defaultTimeout = 5 * time.Second

	defaultSimulatedRetarget = true
)

// defaultSimulatedTarget 模拟链初始目标：前两个字节为 0，约 65536 次哈希出一个块
func defaultSimulatedTarget() *big.Int {
	t := new(big.Int).Lsh(big.NewInt(1), 240)
	return t.Sub(t, big.NewInt(1))
}
