// Package chain 提供链预言机配置
package chain

import (
	"math/big"
	"strings"
	"time"

	configtypes "github.com/weisyn/metaminer/pkg/types"
)

// 预言机类型
const (
	TypeMemory = "memory"
	TypeRPC    = "rpc"
)

// ChainOptions 链预言机配置选项
type ChainOptions struct {
	Type      string        `json:"type"`
	Endpoint  string        `json:"endpoint"`
	Namespace string        `json:"namespace"`
	Timeout   time.Duration `json:"timeout"`

	// 仅 memory 类型使用
	SimulatedTarget   *big.Int `json:"simulated_target"`
	SimulatedRetarget bool     `json:"simulated_retarget"`
}

// Config 链配置实现
type Config struct {
	options *ChainOptions
}

// New 创建链配置
func New(userConfig interface{}) *Config {
	options := &ChainOptions{
		Type:              defaultType,
		Endpoint:          defaultEndpoint,
		Namespace:         defaultNamespace,
		Timeout:           defaultTimeout,
		SimulatedTarget:   defaultSimulatedTarget(),
		SimulatedRetarget: defaultSimulatedRetarget,
	}
	if u, ok := userConfig.(*configtypes.UserChainConfig); ok && u != nil {
		if u.Type != nil {
			options.Type = strings.ToLower(*u.Type)
		}
		if u.Endpoint != nil {
			options.Endpoint = *u.Endpoint
		}
		if u.Namespace != nil && *u.Namespace != "" {
			options.Namespace = *u.Namespace
		}
		if u.TimeoutMs != nil && *u.TimeoutMs > 0 {
			options.Timeout = time.Duration(*u.TimeoutMs) * time.Millisecond
		}
		if u.SimulatedTarget != nil {
			hexStr := strings.TrimPrefix(strings.TrimPrefix(*u.SimulatedTarget, "0x"), "0X")
			if t, ok := new(big.Int).SetString(hexStr, 16); ok && t.Sign() >= 0 {
				options.SimulatedTarget = t
			}
		}
		if u.SimulatedRetarget != nil {
			options.SimulatedRetarget = *u.SimulatedRetarget
		}
	}
	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *ChainOptions {
	return c.options
}
