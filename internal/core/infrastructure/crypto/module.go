// Package crypto 组装矿工使用的哈希服务与工作量证明搜索器
package crypto

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	log "github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
)

// 前缀哈希结果缓存时长
const hashCacheLife = 10 * time.Minute

// CryptoParams 定义加密模块的依赖参数
type CryptoParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    log.Logger `optional:"true"`
}

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashManager crypto.HashManager
	HashService *hash.HashService
}

// Module 返回加密模块（含 pow 子模块）
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideCryptoServices),
		pow.Module(),
	)
}

// ProvideCryptoServices 创建带缓存的哈希服务；缓存不可用时退化为无缓存实现
func ProvideCryptoServices(params CryptoParams) CryptoOutput {
	svc, err := hash.NewHashService(context.Background(), hashCacheLife)
	if err != nil {
		if params.Logger != nil {
			params.Logger.Warnf("哈希缓存初始化失败，使用无缓存实现: %v", err)
		}
		svc = hash.NewUncachedHashService()
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return svc.Close()
		},
	})
	return CryptoOutput{HashManager: svc, HashService: svc}
}
