// Package config 定义配置提供者接口
package config

import (
	apiconfig "github.com/weisyn/metaminer/internal/config/api"
	chainconfig "github.com/weisyn/metaminer/internal/config/chain"
	eventconfig "github.com/weisyn/metaminer/internal/config/event"
	journalconfig "github.com/weisyn/metaminer/internal/config/journal"
	logconfig "github.com/weisyn/metaminer/internal/config/log"
	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/pkg/types"
)

// Provider 配置提供者
type Provider interface {
	GetLog() *logconfig.LogOptions
	GetMiner() *minerconfig.MinerOptions
	GetChain() *chainconfig.ChainOptions
	GetJournal() *journalconfig.JournalOptions
	GetAPI() *apiconfig.APIOptions
	GetEvent() *eventconfig.EventOptions

	// GetDataDir 数据根目录
	GetDataDir() string
	// GetAppConfig 原始用户配置
	GetAppConfig() *types.AppConfig
}
