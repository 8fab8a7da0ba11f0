// Package miner 提供挖矿配置
package miner

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	configtypes "github.com/weisyn/metaminer/pkg/types"
)

// MinerOptions 挖矿配置选项
type MinerOptions struct {
	Workers          int           `json:"workers"`
	BatchSize        uint64        `json:"batch_size"`
	PollInterval     time.Duration `json:"poll_interval"`
	InitialNonceBits int           `json:"initial_nonce_bits"`
	RetryDelay       time.Duration `json:"retry_delay"`
	StopTimeout      time.Duration `json:"stop_timeout"`

	Mode        configtypes.CommitmentMode `json:"mode"`
	MetaHex     string                     `json:"meta"`
	PayloadHex  string                     `json:"payload"`
	PayloadSize int                        `json:"payload_size"`
	AutoStart   bool                       `json:"auto_start"`
}

// Validate 校验配置
func (o *MinerOptions) Validate() error {
	if o.Workers <= 0 {
		return fmt.Errorf("miner.workers 必须大于0: %d", o.Workers)
	}
	if o.BatchSize == 0 {
		return fmt.Errorf("miner.batch_size 必须大于0")
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("miner.poll_interval_ms 必须大于0")
	}
	if o.InitialNonceBits < 0 || o.InitialNonceBits > maxInitialNonceBits {
		return fmt.Errorf("miner.initial_nonce_bits 超出范围 [0,%d]: %d", maxInitialNonceBits, o.InitialNonceBits)
	}
	if o.Mode != configtypes.CommitmentModeBlock && o.Mode != configtypes.CommitmentModeBus {
		return fmt.Errorf("miner.mode 未知: %q", o.Mode)
	}
	if _, err := o.Meta(); err != nil {
		return err
	}
	if _, err := o.Payload(); err != nil {
		return err
	}
	if o.PayloadHex == "" && o.PayloadSize < 0 {
		return fmt.Errorf("miner.payload_size 不能为负: %d", o.PayloadSize)
	}
	return nil
}

// Meta 解码附加元数据
func (o *MinerOptions) Meta() ([]byte, error) {
	return decodeHexField("miner.meta", o.MetaHex)
}

// Payload 解码固定负载；返回 nil 表示每轮随机生成
func (o *MinerOptions) Payload() ([]byte, error) {
	if o.PayloadHex == "" {
		return nil, nil
	}
	return decodeHexField("miner.payload", o.PayloadHex)
}

func decodeHexField(field, value string) ([]byte, error) {
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if value == "" {
		return []byte{}, nil
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s 不是合法的十六进制: %w", field, err)
	}
	return b, nil
}

// Config 挖矿配置实现
type Config struct {
	options *MinerOptions
}

// New 创建挖矿配置，userConfig 为 *types.UserMinerConfig 或 nil
func New(userConfig interface{}) *Config {
	options := createDefaultMinerOptions()
	if userMiner, ok := userConfig.(*configtypes.UserMinerConfig); ok && userMiner != nil {
		applyUserMinerConfig(options, userMiner)
	}
	return &Config{options: options}
}

func createDefaultMinerOptions() *MinerOptions {
	return &MinerOptions{
		Workers:          defaultWorkers,
		BatchSize:        defaultBatchSize,
		PollInterval:     defaultPollInterval,
		InitialNonceBits: defaultInitialNonceBits,
		RetryDelay:       defaultRetryDelay,
		StopTimeout:      defaultStopTimeout,
		Mode:             configtypes.CommitmentModeBlock,
		PayloadSize:      defaultPayloadSize,
		AutoStart:        defaultAutoStart,
	}
}

func applyUserMinerConfig(options *MinerOptions, u *configtypes.UserMinerConfig) {
	if u.Workers != nil {
		options.Workers = *u.Workers
	}
	if u.BatchSize != nil {
		options.BatchSize = *u.BatchSize
	}
	if u.PollIntervalMs != nil {
		options.PollInterval = time.Duration(*u.PollIntervalMs) * time.Millisecond
	}
	if u.InitialNonceBits != nil {
		options.InitialNonceBits = *u.InitialNonceBits
	}
	if u.RetryDelayMs != nil && *u.RetryDelayMs >= 0 {
		options.RetryDelay = time.Duration(*u.RetryDelayMs) * time.Millisecond
	}
	if u.Mode != nil {
		options.Mode = configtypes.CommitmentMode(strings.ToLower(*u.Mode))
	}
	if u.Meta != nil {
		options.MetaHex = *u.Meta
	}
	if u.Payload != nil {
		options.PayloadHex = *u.Payload
	}
	if u.PayloadSize != nil {
		options.PayloadSize = *u.PayloadSize
	}
	if u.AutoStart != nil {
		options.AutoStart = *u.AutoStart
	}
}

// GetOptions 获取挖矿配置选项
func (c *Config) GetOptions() *MinerOptions {
	return c.options
}
