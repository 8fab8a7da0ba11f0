package pow

import (
	"hash"
	"math/big"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// HasherFactory 创建哈希状态
type HasherFactory func() hash.Hash

// HashWorker 无状态的批量哈希单元
//
// 从起始 nonce 开始：先加一，再计算 keccak256(prefix ∥ LE8(nonce))，
// 按大端无符号整数与目标比较，返回批内第一个 hash <= target 的 nonce。
type HashWorker struct {
	newHasher HasherFactory
}

// NewHashWorker 创建工作者；newHasher 为 nil 时使用 Keccak-256
func NewHashWorker(newHasher HasherFactory) *HashWorker {
	if newHasher == nil {
		newHasher = sha3.NewLegacyKeccak256
	}
	return &HashWorker{newHasher: newHasher}
}

// TryBatch 尝试 [start+1, start+batchSize] 区间内的 nonce
func (w *HashWorker) TryBatch(prefix []byte, target *uint256.Int, start, batchSize uint64) (uint64, bool) {
	h := w.newHasher()

	buf := make([]byte, len(prefix)+NonceSize)
	copy(buf, prefix)
	nonceBytes := buf[len(prefix):]
	copy(nonceBytes, Uint64ToBytes(start))

	var (
		digest [32]byte
		value  uint256.Int
	)
	for i := uint64(0); i < batchSize; i++ {
		IncrementLE(nonceBytes)

		h.Reset()
		h.Write(buf)
		value.SetBytes(h.Sum(digest[:0]))

		if !value.Gt(target) {
			return BytesToUint64(nonceBytes), true
		}
	}
	return 0, false
}

// HashNonce 计算单个 nonce 的哈希
func (w *HashWorker) HashNonce(prefix []byte, nonce uint64) []byte {
	h := w.newHasher()
	h.Write(prefix)
	h.Write(Uint64ToBytes(nonce))
	return h.Sum(nil)
}

// Verify 重新计算并校验 nonce 是否满足目标
func (w *HashWorker) Verify(prefix []byte, nonce uint64, target *big.Int) bool {
	if target == nil || target.Sign() < 0 {
		return false
	}
	return new(big.Int).SetBytes(w.HashNonce(prefix, nonce)).Cmp(target) <= 0
}
