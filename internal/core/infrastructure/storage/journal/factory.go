package journal

import (
	"fmt"

	journalconfig "github.com/weisyn/metaminer/internal/config/journal"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
)

// New 按配置选择后端
func New(opts *journalconfig.JournalOptions, logger log.Logger) (storage.Journal, error) {
	if opts == nil {
		opts = journalconfig.New(nil).GetOptions()
	}
	switch opts.Backend {
	case journalconfig.BackendMemory, "":
		return NewMemoryJournal(opts.MaxEntries), nil
	case journalconfig.BackendBadger:
		return OpenBadgerJournal(opts.Path, opts.MaxEntries, logger)
	case journalconfig.BackendRedis:
		return OpenRedisJournal(RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Key:      opts.RedisKey,
		}, opts.MaxEntries)
	default:
		return nil, fmt.Errorf("未知的 journal 后端: %s", opts.Backend)
	}
}
