// Package event 提供事件总线配置
package event

import configtypes "github.com/weisyn/metaminer/pkg/types"

// EventOptions 事件总线配置选项
type EventOptions struct {
	Enabled bool `json:"enabled"` // 关闭时发布与订阅均为空操作
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置
func New(userConfig interface{}) *Config {
	options := &EventOptions{Enabled: defaultEnabled}
	if userEvent, ok := userConfig.(*configtypes.UserEventConfig); ok && userEvent != nil {
		if userEvent.Enabled != nil {
			options.Enabled = *userEvent.Enabled
		}
	}
	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// FromOptions 包装已有选项
func FromOptions(options *EventOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}
