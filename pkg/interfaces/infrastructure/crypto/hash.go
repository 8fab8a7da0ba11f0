// Package crypto 定义矿工使用的哈希服务接口
package crypto

// HashManager 哈希服务接口
type HashManager interface {
	// Keccak256 计算 Keccak-256（以太坊变体，非 SHA3-256）
	Keccak256(data []byte) []byte
	// Keccak256Concat 拼接后计算 Keccak-256，不产生中间拷贝
	Keccak256Concat(parts ...[]byte) []byte
}
