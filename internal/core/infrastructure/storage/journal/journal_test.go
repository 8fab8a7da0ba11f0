package journal

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	journalconfig "github.com/weisyn/metaminer/internal/config/journal"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

func entryAt(i int, base time.Time) *types.JournalEntry {
	return &types.JournalEntry{
		RoundID:      fmt.Sprintf("round-%d", i),
		Nonce:        uint64(1000 + i),
		PreviousHash: "0xabcd",
		Salt:         uint64(i),
		Target:       "0xffff",
		Attempts:     1,
		SolveMillis:  int64(i * 10),
		FoundAt:      base.Add(time.Duration(i) * time.Millisecond),
	}
}

// exerciseJournal 各后端共用的行为检查
func exerciseJournal(t *testing.T, j storage.Journal, maxEntries int) {
	t.Helper()
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	total := maxEntries + 3
	for i := 0; i < total; i++ {
		require.NoError(t, j.Record(ctx, entryAt(i, base)))
	}

	all, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, maxEntries, "超过上限的旧记录应被裁剪")
	assert.Equal(t, fmt.Sprintf("round-%d", total-1), all[0].RoundID, "最新的应排在最前")
	assert.Equal(t, fmt.Sprintf("round-%d", total-maxEntries), all[len(all)-1].RoundID)

	top, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, uint64(1000+total-1), top[0].Nonce)
	assert.Equal(t, int64((total-2)*10), top[1].SolveMillis)
	assert.True(t, top[0].FoundAt.Equal(base.Add(time.Duration(total-1)*time.Millisecond)))

	assert.Error(t, j.Record(ctx, nil))
}

func TestMemoryJournal(t *testing.T) {
	exerciseJournal(t, NewMemoryJournal(5), 5)
}

func TestMemoryJournal_RecentReturnsCopies(t *testing.T) {
	j := NewMemoryJournal(3)
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, entryAt(1, time.Now())))

	got, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	got[0].Nonce = 0

	again, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), again[0].Nonce, "调用方修改不应影响存储")
}

func TestBadgerJournal_InMemory(t *testing.T) {
	j, err := OpenBadgerJournal("", 4, nil)
	require.NoError(t, err)
	defer j.Close()

	exerciseJournal(t, j, 4)
}

func TestBadgerJournal_ReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	j, err := OpenBadgerJournal(dir, 10, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.Record(ctx, entryAt(i, base)))
	}
	require.NoError(t, j.Close())
	assert.NoError(t, j.Close(), "重复关闭应无害")

	_, err = j.Recent(ctx, 1)
	assert.ErrorIs(t, err, errClosed)

	reopened, err := OpenBadgerJournal(dir, 10, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "round-2", got[0].RoundID)
	assert.Equal(t, 3, reopened.count)
}

// fakeList 内存版 listClient
type fakeList struct {
	mu    sync.Mutex
	items map[string][]string
}

func newFakeList() *fakeList { return &fakeList{items: make(map[string][]string)} }

func (f *fakeList) PushTrim(_ context.Context, key string, value []byte, max int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := append([]string{string(value)}, f.items[key]...)
	if len(list) > max {
		list = list[:max]
	}
	f.items[key] = list
	return nil
}

func (f *fakeList) Range(_ context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.items[key]
	if stop < 0 || stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop {
		return nil, nil
	}
	return append([]string(nil), list[start:stop+1]...), nil
}

func (f *fakeList) Close() error { return nil }

func TestRedisJournal_FakeClient(t *testing.T) {
	exerciseJournal(t, newRedisJournal(newFakeList(), "test:journal", 6), 6)
}

func TestRedisJournal_Live(t *testing.T) {
	addr := os.Getenv("METAMINER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 METAMINER_TEST_REDIS_ADDR，跳过 Redis 集成测试")
	}
	key := fmt.Sprintf("metaminer:test:%d", time.Now().UnixNano())
	j, err := OpenRedisJournal(RedisOptions{Addr: addr, Key: key}, 5)
	require.NoError(t, err)
	defer func() {
		if c, ok := j.client.(*goRedisList); ok {
			c.client.Del(context.Background(), key)
		}
		j.Close()
	}()

	exerciseJournal(t, j, 5)
}

func TestNew_SelectsBackend(t *testing.T) {
	j, err := New(&journalconfig.JournalOptions{Backend: journalconfig.BackendMemory, MaxEntries: 2}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryJournal{}, j)

	j, err = New(&journalconfig.JournalOptions{Backend: journalconfig.BackendBadger, Path: t.TempDir(), MaxEntries: 2}, nil)
	require.NoError(t, err)
	assert.IsType(t, &BadgerJournal{}, j)
	require.NoError(t, j.Close())

	_, err = New(&journalconfig.JournalOptions{Backend: "sqlite"}, nil)
	assert.Error(t, err)
}
