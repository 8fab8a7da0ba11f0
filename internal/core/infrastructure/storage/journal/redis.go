package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

// listClient RedisJournal 所需的最小列表操作
type listClient interface {
	// PushTrim 头部插入并保留前 max 个元素
	PushTrim(ctx context.Context, key string, value []byte, max int) error
	// Range 读取 [start, stop] 区间
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	Close() error
}

// RedisOptions Redis 连接参数
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// goRedisList go-redis 实现的 listClient
type goRedisList struct {
	client *redis.Client
}

var _ listClient = (*goRedisList)(nil)

func newGoRedisList(opts RedisOptions) (listClient, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &goRedisList{client: client}, nil
}

func (c *goRedisList) PushTrim(ctx context.Context, key string, value []byte, max int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, value)
		pipe.LTrim(ctx, key, 0, int64(max-1))
		return nil
	})
	return err
}

func (c *goRedisList) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.client.LRange(ctx, key, start, stop).Result()
}

func (c *goRedisList) Close() error {
	return c.client.Close()
}

// RedisJournal 多个矿工进程共享的日志，最新条目位于列表头部
type RedisJournal struct {
	client     listClient
	key        string
	maxEntries int
}

// OpenRedisJournal 连接 Redis 并创建日志
func OpenRedisJournal(opts RedisOptions, maxEntries int) (*RedisJournal, error) {
	client, err := newGoRedisList(opts)
	if err != nil {
		return nil, err
	}
	return newRedisJournal(client, opts.Key, maxEntries), nil
}

func newRedisJournal(client listClient, key string, maxEntries int) *RedisJournal {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &RedisJournal{client: client, key: key, maxEntries: maxEntries}
}

// Record 写入一条记录
func (j *RedisJournal) Record(ctx context.Context, entry *types.JournalEntry) error {
	if entry == nil {
		return types.NewInvalidInput("entry", "为空")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化 journal 条目失败: %w", err)
	}
	if err := j.client.PushTrim(ctx, j.key, data, j.maxEntries); err != nil {
		return fmt.Errorf("写入 redis journal 失败: %w", err)
	}
	return nil
}

// Recent 最近 limit 条，limit<=0 返回全部
func (j *RedisJournal) Recent(ctx context.Context, limit int) ([]*types.JournalEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := j.client.Range(ctx, j.key, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("读取 redis journal 失败: %w", err)
	}
	out := make([]*types.JournalEntry, 0, len(raw))
	for _, item := range raw {
		var entry types.JournalEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("解析 journal 条目失败: %w", err)
		}
		out = append(out, &entry)
	}
	return out, nil
}

// Close 关闭连接
func (j *RedisJournal) Close() error {
	return j.client.Close()
}

var _ storage.Journal = (*RedisJournal)(nil)
