// Package storage 定义存储接口
package storage

import (
	"context"

	"github.com/weisyn/metaminer/pkg/types"
)

// Journal 已接受 nonce 的追加日志
//
// 实现：memory（进程内）、badger（本地持久化）、redis（多进程共享）。
type Journal interface {
	// Record 追加一条记录
	Record(ctx context.Context, entry *types.JournalEntry) error
	// Recent 按时间倒序返回最近 limit 条记录
	Recent(ctx context.Context, limit int) ([]*types.JournalEntry, error)
	// Close 释放底层资源
	Close() error
}
