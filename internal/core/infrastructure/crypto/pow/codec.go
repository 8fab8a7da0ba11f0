package pow

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// NonceSize nonce 序列化后的字节数
const NonceSize = 8

// Uint64ToBytes 小端序 8 字节
func Uint64ToBytes(n uint64) []byte {
	b := make([]byte, NonceSize)
	binary.LittleEndian.PutUint64(b, n)
	return b
}

// BytesToUint64 Uint64ToBytes 的逆运算
//
// 长度不是 8 属于调用方违约，直接 panic。
func BytesToUint64(b []byte) uint64 {
	if len(b) != NonceSize {
		panic(fmt.Sprintf("pow: nonce 必须为 %d 字节，实际 %d", NonceSize, len(b)))
	}
	return binary.LittleEndian.Uint64(b)
}

// BigToBytes32 把 [0, 2^256) 内的整数编码为 32 字节大端序，高位补零
func BigToBytes32(n *big.Int) []byte {
	if n == nil || n.Sign() < 0 || n.BitLen() > 256 {
		panic("pow: 整数超出 256 位无符号范围")
	}
	return n.FillBytes(make([]byte, 32))
}

// IncrementLE 把 b 视为小端序计数器原地加一；全 0xff 时回绕为全 0
func IncrementLE(b []byte) {
	for i := range b {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}
