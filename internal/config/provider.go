package config

import (
	"fmt"
	"path/filepath"

	"github.com/weisyn/metaminer/internal/config/api"
	"github.com/weisyn/metaminer/internal/config/chain"
	"github.com/weisyn/metaminer/internal/config/event"
	"github.com/weisyn/metaminer/internal/config/journal"
	"github.com/weisyn/metaminer/internal/config/log"
	"github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/pkg/interfaces/config"
	"github.com/weisyn/metaminer/pkg/types"
)

const defaultDataDir = "./data"

// Provider 实现配置提供者接口
//
// 各段配置在构造时一次性解析，之后只读。
type Provider struct {
	appConfig *types.AppConfig

	log     *log.LogOptions
	miner   *miner.MinerOptions
	chain   *chain.ChainOptions
	journal *journal.JournalOptions
	api     *api.APIOptions
	event   *event.EventOptions
}

// NewProvider 创建配置提供者，appConfig 可为 nil（全部使用默认值）
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	p := &Provider{appConfig: appConfig}

	p.log = log.New(appConfig.Log).GetOptions()
	p.miner = miner.New(appConfig.Miner).GetOptions()
	p.chain = chain.New(appConfig.Chain).GetOptions()
	p.journal = journal.New(appConfig.Journal).GetOptions()
	p.api = api.New(appConfig.API).GetOptions()
	p.event = event.New(appConfig.Event).GetOptions()

	// 相对的 badger 目录挂到数据目录下
	if p.journal.Backend == journal.BackendBadger && !filepath.IsAbs(p.journal.Path) {
		p.journal.Path = filepath.Join(p.GetDataDir(), p.journal.Path)
	}
	return p
}

// Validate 校验需要在启动前失败的配置项
func (p *Provider) Validate() error {
	if err := p.miner.Validate(); err != nil {
		return err
	}
	switch p.chain.Type {
	case chain.TypeMemory, chain.TypeRPC:
	default:
		return fmt.Errorf("chain.type 未知: %q", p.chain.Type)
	}
	switch p.journal.Backend {
	case journal.BackendMemory, journal.BackendBadger, journal.BackendRedis:
	default:
		return fmt.Errorf("journal.backend 未知: %q", p.journal.Backend)
	}
	return nil
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions { return p.log }

// GetMiner 获取挖矿配置
func (p *Provider) GetMiner() *miner.MinerOptions { return p.miner }

// GetChain 获取链预言机配置
func (p *Provider) GetChain() *chain.ChainOptions { return p.chain }

// GetJournal 获取 nonce 日志配置
func (p *Provider) GetJournal() *journal.JournalOptions { return p.journal }

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions { return p.api }

// GetEvent 获取事件总线配置
func (p *Provider) GetEvent() *event.EventOptions { return p.event }

// GetDataDir 获取数据目录
func (p *Provider) GetDataDir() string {
	if p.appConfig.DataDir != nil && *p.appConfig.DataDir != "" {
		return *p.appConfig.DataDir
	}
	return defaultDataDir
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

var _ config.Provider = (*Provider)(nil)
