// Package hash 提供 Keccak-256 哈希服务
//
// 结果缓存使用 bigcache：提交被拒后重建前缀时输入相同，可直接命中。
package hash

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	cryptointf "github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"golang.org/x/crypto/sha3"
)

// 确保HashService实现了cryptointf.HashManager接口
var _ cryptointf.HashManager = (*HashService)(nil)

const (
	// maxCacheableInput 超过该长度的输入不进缓存
	maxCacheableInput = 4096

	defaultCacheLife = 10 * time.Minute
)

// HashService 提供哈希计算功能
type HashService struct {
	cache *bigcache.BigCache // nil 表示不缓存
}

// NewHashService 创建带缓存的哈希服务
func NewHashService(ctx context.Context, cacheLife time.Duration) (*HashService, error) {
	if cacheLife <= 0 {
		cacheLife = defaultCacheLife
	}
	cfg := bigcache.DefaultConfig(cacheLife)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = maxCacheableInput + 32
	cfg.HardMaxCacheSize = 8 // MB
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("创建哈希缓存失败: %w", err)
	}
	return &HashService{cache: cache}, nil
}

// NewUncachedHashService 创建无缓存的哈希服务
func NewUncachedHashService() *HashService {
	return &HashService{}
}

// Keccak256 计算 Keccak-256 哈希（以太坊变体）
func (s *HashService) Keccak256(data []byte) []byte {
	return s.sum(data)
}

// Keccak256Concat 计算多段拼接后的 Keccak-256，拼接结果作为缓存键
func (s *HashService) Keccak256Concat(parts ...[]byte) []byte {
	if s.cache == nil {
		return keccak(parts...)
	}
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	if size > maxCacheableInput {
		return keccak(parts...)
	}
	buf := make([]byte, 0, size)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return s.sum(buf)
}

// CacheStats 缓存命中统计，无缓存时为零值
func (s *HashService) CacheStats() bigcache.Stats {
	if s.cache == nil {
		return bigcache.Stats{}
	}
	return s.cache.Stats()
}

func (s *HashService) sum(data []byte) []byte {
	cacheable := s.cache != nil && len(data) <= maxCacheableInput
	if cacheable {
		if cached, err := s.cache.Get(string(data)); err == nil {
			return cached
		}
	}

	result := keccak(data)

	if cacheable {
		// 缓存写失败只影响命中率
		_ = s.cache.Set(string(data), result)
	}
	return result
}

// Close 释放缓存
func (s *HashService) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

func keccak(parts ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		hasher.Write(p)
	}
	return hasher.Sum(nil)
}
