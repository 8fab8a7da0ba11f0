// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 挖矿配置 - 对应配置文件中的 miner 字段
	Miner *UserMinerConfig `json:"miner,omitempty"`

	// 链预言机配置
	Chain *UserChainConfig `json:"chain,omitempty"`

	// 已找到 nonce 的日志存储
	Journal *UserJournalConfig `json:"journal,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 事件总线配置
	Event *UserEventConfig `json:"event,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台
}

// UserMinerConfig 用户挖矿配置
type UserMinerConfig struct {
	Workers          *int    `json:"workers,omitempty"`            // 并行工作者数量
	BatchSize        *uint64 `json:"batch_size,omitempty"`         // 每个工作者每批尝试次数
	PollIntervalMs   *int    `json:"poll_interval_ms,omitempty"`   // 过期检测间隔（毫秒）
	InitialNonceBits *int    `json:"initial_nonce_bits,omitempty"` // 随机起始 nonce 位数
	RetryDelayMs     *int    `json:"retry_delay_ms,omitempty"`     // 轮次间/出错后等待（毫秒）
	Mode             *string `json:"mode,omitempty"`               // block | bus
	Meta             *string `json:"meta,omitempty"`               // 附加元数据（十六进制）
	Payload          *string `json:"payload,omitempty"`            // 固定负载（十六进制），为空则每轮随机
	PayloadSize      *int    `json:"payload_size,omitempty"`       // 随机负载长度
	AutoStart        *bool   `json:"auto_start,omitempty"`         // 启动后自动开始挖矿
}

// UserChainConfig 用户链预言机配置
type UserChainConfig struct {
	Type              *string `json:"type,omitempty"`               // memory | rpc
	Endpoint          *string `json:"endpoint,omitempty"`           // JSON-RPC 地址
	Namespace         *string `json:"namespace,omitempty"`          // RPC 方法前缀
	TimeoutMs         *int    `json:"timeout_ms,omitempty"`         // 单次调用超时
	SimulatedTarget   *string `json:"simulated_target,omitempty"`   // 模拟链初始目标值（十六进制）
	SimulatedRetarget *bool   `json:"simulated_retarget,omitempty"` // 模拟链是否在出块后调整目标
}

// UserJournalConfig 用户 nonce 日志配置
type UserJournalConfig struct {
	Backend       *string `json:"backend,omitempty"`        // memory | badger | redis
	Path          *string `json:"path,omitempty"`           // badger 目录
	RedisAddr     *string `json:"redis_addr,omitempty"`     // redis 地址
	RedisPassword *string `json:"redis_password,omitempty"` // redis 密码
	RedisDB       *int    `json:"redis_db,omitempty"`       // redis 库号
	RedisKey      *string `json:"redis_key,omitempty"`      // redis 列表键
	MaxEntries    *int    `json:"max_entries,omitempty"`    // 保留条数
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Host    *string `json:"host,omitempty"`
	Port    *int    `json:"port,omitempty"`
}

// UserEventConfig 用户事件总线配置
type UserEventConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}
