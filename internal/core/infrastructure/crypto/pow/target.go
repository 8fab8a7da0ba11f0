package pow

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/weisyn/metaminer/pkg/types"
)

var maxTarget = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MaxTarget 返回 2^256-1（任何哈希都满足）
func MaxTarget() *big.Int {
	return new(big.Int).Set(maxTarget)
}

// ParseTarget 校验目标值并转换为热循环使用的定长整数
func ParseTarget(target *big.Int) (*uint256.Int, error) {
	if target == nil {
		return nil, types.NewInvalidInput("target", "目标值为空")
	}
	if target.Sign() < 0 {
		return nil, types.NewInvalidInput("target", "目标值为负")
	}
	t, overflow := uint256.FromBig(target)
	if overflow {
		return nil, types.NewInvalidInput("target", "目标值超过 256 位")
	}
	return t, nil
}

// TargetFromDifficulty 由前导零字节数构造目标值
//
// difficulty 个 0x00 后接 0xff 填满 32 字节；difficulty 取值 [0, 32]。
func TargetFromDifficulty(difficulty int) (*big.Int, error) {
	if difficulty < 0 || difficulty > 32 {
		return nil, types.NewInvalidInput("difficulty", "前导零字节数必须在 [0,32] 内")
	}
	buf := make([]byte, 32)
	for i := difficulty; i < 32; i++ {
		buf[i] = 0xff
	}
	return new(big.Int).SetBytes(buf), nil
}

// ResolveTarget 取快照中的目标值；未给出时由 Difficulty 推导
func ResolveTarget(info *types.BlockInfo) (*big.Int, error) {
	if info == nil {
		return nil, types.NewInvalidInput("block_info", "快照为空")
	}
	if info.Target != nil {
		return info.Target, nil
	}
	return TargetFromDifficulty(info.Difficulty)
}

// TargetAdjustment 两次目标值之间的变化
type TargetAdjustment struct {
	Changed bool
	Easier  bool     // 目标变大即变容易
	Delta   *big.Int // 绝对差值
	Percent int64    // 相对 previous 的百分比（向下取整）
}

// CompareTargets 计算目标值调整；previous 为 0 时 Percent 记 0
func CompareTargets(previous, next *big.Int) TargetAdjustment {
	cmp := next.Cmp(previous)
	if cmp == 0 {
		return TargetAdjustment{Delta: new(big.Int)}
	}
	delta := new(big.Int).Sub(next, previous)
	delta.Abs(delta)

	adj := TargetAdjustment{Changed: true, Easier: cmp > 0, Delta: delta}
	if previous.Sign() > 0 {
		pct := new(big.Int).Mul(delta, big.NewInt(100))
		pct.Quo(pct, previous)
		if pct.IsInt64() {
			adj.Percent = pct.Int64()
		}
	}
	return adj
}
