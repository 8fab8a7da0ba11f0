package pow

import (
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/metaminer/pkg/types"
)

// BusHashSize 总线模式中当前哈希与签名者地址的长度
const BusHashSize = 32

// BlockPreimage 区块模式的前缀
//
//	keccak256(previous_hash ∥ LE8(salt) ∥ meta ∥ payload)
func BlockPreimage(hasher crypto.HashManager, info *types.BlockInfo, meta, payload []byte) ([]byte, error) {
	if info == nil {
		return nil, types.NewInvalidInput("block_info", "快照为空")
	}
	if len(info.PreviousHash) == 0 {
		return nil, types.NewInvalidInput("previous_hash", "为空")
	}
	return hasher.Keccak256Concat(info.PreviousHash, Uint64ToBytes(info.Salt), meta, payload), nil
}

// BusPreimage 总线模式的前缀：current_hash(32) ∥ signer(32)，不再哈希
func BusPreimage(currentHash, signer []byte) ([]byte, error) {
	if len(currentHash) != BusHashSize {
		return nil, types.NewInvalidInput("current_hash", "长度必须为32字节")
	}
	if len(signer) != BusHashSize {
		return nil, types.NewInvalidInput("signer", "长度必须为32字节")
	}
	prefix := make([]byte, 0, 2*BusHashSize)
	prefix = append(prefix, currentHash...)
	return append(prefix, signer...), nil
}

// BuildPrefix 按模式构造哈希前缀
func BuildPrefix(hasher crypto.HashManager, mode types.CommitmentMode, info *types.BlockInfo, meta, payload []byte) ([]byte, error) {
	switch mode {
	case types.CommitmentModeBus:
		if info == nil {
			return nil, types.NewInvalidInput("block_info", "快照为空")
		}
		return BusPreimage(info.PreviousHash, info.Signer)
	case types.CommitmentModeBlock, "":
		return BlockPreimage(hasher, info, meta, payload)
	default:
		return nil, types.NewInvalidInput("mode", string(mode))
	}
}
