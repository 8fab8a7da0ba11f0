// Package journal 提供 nonce 日志存储配置
package journal

import (
	"strings"

	configtypes "github.com/weisyn/metaminer/pkg/types"
)

// 后端类型
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// JournalOptions 日志存储配置选项
type JournalOptions struct {
	Backend       string `json:"backend"`
	Path          string `json:"path"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
	RedisKey      string `json:"redis_key"`
	MaxEntries    int    `json:"max_entries"`
}

// Config 日志存储配置实现
type Config struct {
	options *JournalOptions
}

// New 创建配置；相对 path 基于 dataDir
func New(userConfig interface{}) *Config {
	options := &JournalOptions{
		Backend:    defaultBackend,
		Path:       defaultPath,
		RedisAddr:  defaultRedisAddr,
		RedisKey:   defaultRedisKey,
		MaxEntries: defaultMaxEntries,
	}
	if u, ok := userConfig.(*configtypes.UserJournalConfig); ok && u != nil {
		if u.Backend != nil {
			options.Backend = strings.ToLower(*u.Backend)
		}
		if u.Path != nil {
			options.Path = *u.Path
		}
		if u.RedisAddr != nil {
			options.RedisAddr = *u.RedisAddr
		}
		if u.RedisPassword != nil {
			options.RedisPassword = *u.RedisPassword
		}
		if u.RedisDB != nil {
			options.RedisDB = *u.RedisDB
		}
		if u.RedisKey != nil && *u.RedisKey != "" {
			options.RedisKey = *u.RedisKey
		}
		if u.MaxEntries != nil && *u.MaxEntries > 0 {
			options.MaxEntries = *u.MaxEntries
		}
	}
	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *JournalOptions {
	return c.options
}
