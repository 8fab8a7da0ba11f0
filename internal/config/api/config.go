// Package api 提供 HTTP API 配置
package api

import (
	"fmt"

	configtypes "github.com/weisyn/metaminer/pkg/types"
)

// APIOptions HTTP API 配置选项
type APIOptions struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// Address 监听地址
func (o *APIOptions) Address() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建 API 配置
func New(userConfig interface{}) *Config {
	options := &APIOptions{
		Enabled: defaultEnabled,
		Host:    defaultHost,
		Port:    defaultPort,
	}
	if userAPI, ok := userConfig.(*configtypes.UserAPIConfig); ok && userAPI != nil {
		if userAPI.Enabled != nil {
			options.Enabled = *userAPI.Enabled
		}
		if userAPI.Host != nil {
			options.Host = *userAPI.Host
		}
		if userAPI.Port != nil && *userAPI.Port > 0 {
			options.Port = *userAPI.Port
		}
	}
	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
