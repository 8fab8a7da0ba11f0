// Package journal 提供已接受 nonce 的追加日志
//
// 三种后端：memory（进程内环形缓冲）、badger（本地持久化）、redis（多个矿工进程共享）。
// 条目以 JSON 存储，读取按时间倒序。
package journal

import (
	"context"
	"sync"

	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

// MemoryJournal 进程内日志，超过 maxEntries 时丢弃最旧条目
type MemoryJournal struct {
	mu         sync.RWMutex
	entries    []*types.JournalEntry
	maxEntries int
}

// NewMemoryJournal 创建内存日志
func NewMemoryJournal(maxEntries int) *MemoryJournal {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &MemoryJournal{maxEntries: maxEntries}
}

// Record 追加一条记录
func (j *MemoryJournal) Record(_ context.Context, entry *types.JournalEntry) error {
	if entry == nil {
		return types.NewInvalidInput("entry", "为空")
	}
	c := *entry
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, &c)
	if over := len(j.entries) - j.maxEntries; over > 0 {
		j.entries = append(j.entries[:0:0], j.entries[over:]...)
	}
	return nil
}

// Recent 最近 limit 条，新的在前
func (j *MemoryJournal) Recent(_ context.Context, limit int) ([]*types.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if limit <= 0 || limit > len(j.entries) {
		limit = len(j.entries)
	}
	out := make([]*types.JournalEntry, 0, limit)
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		c := *j.entries[i]
		out = append(out, &c)
	}
	return out, nil
}

// Close 无操作
func (j *MemoryJournal) Close() error { return nil }

var _ storage.Journal = (*MemoryJournal)(nil)
