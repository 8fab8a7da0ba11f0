package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

var (
	keyPrefix = []byte("journal/")

	errClosed = errors.New("journal 已关闭")
)

// BadgerJournal 基于 BadgerDB 的持久化日志
//
// 键为 prefix ∥ BE8(found_at 纳秒) ∥ BE8(序号)，天然按时间有序，倒序迭代即最新优先。
type BadgerJournal struct {
	db         *badgerdb.DB
	logger     log.Logger
	maxEntries int

	mu      sync.Mutex // 串行化写入与裁剪
	count   int
	seq     atomic.Uint64
	closing atomic.Bool
}

// OpenBadgerJournal 打开磁盘日志；dir 为空时使用内存模式
func OpenBadgerJournal(dir string, maxEntries int, logger log.Logger) (*BadgerJournal, error) {
	var opts badgerdb.Options
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("创建 journal 目录失败: %w", err)
		}
		opts = badgerdb.DefaultOptions(dir)
	}
	// 记录很小，缩小内存占用
	opts.MemTableSize = 8 << 20
	opts.ValueLogFileSize = 64 << 20
	opts.BlockCacheSize = 8 << 20
	opts.IndexCacheSize = 4 << 20
	opts.NumCompactors = 2
	if logger != nil {
		opts.Logger = &badgerLogger{logger: logger}
	} else {
		opts.Logger = nil
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 BadgerDB 失败: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = 1
	}
	j := &BadgerJournal{db: db, logger: logger, maxEntries: maxEntries}

	count, err := j.countEntries()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	j.count = count
	return j, nil
}

// Record 写入一条记录并裁剪超出上限的旧记录
func (j *BadgerJournal) Record(_ context.Context, entry *types.JournalEntry) error {
	if entry == nil {
		return types.NewInvalidInput("entry", "为空")
	}
	if j.closing.Load() {
		return errClosed
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化 journal 条目失败: %w", err)
	}
	key := j.entryKey(uint64(entry.FoundAt.UnixNano()))

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return fmt.Errorf("写入 journal 失败: %w", err)
	}
	j.count++
	if j.count > j.maxEntries {
		return j.trimOldest(j.count - j.maxEntries)
	}
	return nil
}

// Recent 最近 limit 条，新的在前
func (j *BadgerJournal) Recent(_ context.Context, limit int) ([]*types.JournalEntry, error) {
	if j.closing.Load() {
		return nil, errClosed
	}
	var out []*types.JournalEntry
	err := j.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// 倒序迭代需要从前缀之后的最大键开始
		seekKey := append(append([]byte(nil), keyPrefix...), 0xff)
		for it.Seek(seekKey); it.ValidForPrefix(keyPrefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var entry types.JournalEntry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &entry)
			}); err != nil {
				return fmt.Errorf("解析 journal 条目失败: %w", err)
			}
			out = append(out, &entry)
		}
		return nil
	})
	return out, err
}

// Close 关闭数据库
func (j *BadgerJournal) Close() error {
	if !j.closing.CompareAndSwap(false, true) {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

func (j *BadgerJournal) entryKey(foundAt uint64) []byte {
	key := make([]byte, 0, len(keyPrefix)+16)
	key = append(key, keyPrefix...)
	key = binary.BigEndian.AppendUint64(key, foundAt)
	return binary.BigEndian.AppendUint64(key, j.seq.Add(1))
}

func (j *BadgerJournal) countEntries() (int, error) {
	count := 0
	err := j.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(keyPrefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// trimOldest 删除最旧的 n 条，调用方持有 j.mu
func (j *BadgerJournal) trimOldest(n int) error {
	var keys [][]byte
	err := j.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(keyPrefix) && len(keys) < n; it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := j.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("裁剪 journal 失败: %w", err)
	}
	j.count -= len(keys)
	return nil
}

// badgerLogger 把 BadgerDB 日志转发到矿工日志
type badgerLogger struct {
	logger log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

var _ storage.Journal = (*BadgerJournal)(nil)
