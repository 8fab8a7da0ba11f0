// Package log 提供日志配置
package log

import (
	configtypes "github.com/weisyn/metaminer/pkg/types"
	"go.uber.org/zap/zapcore"
)

// LogOptions 日志配置选项
type LogOptions struct {
	Level     string `json:"level"`      // 日志级别 (debug, info, warn, error, fatal)
	ToConsole bool   `json:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path"`  // 日志文件路径，为空则不落盘

	// 轮转
	MaxSize    int  `json:"max_size"`    // MB
	MaxBackups int  `json:"max_backups"` // 备份文件数
	MaxAge     int  `json:"max_age"`     // 天
	Compress   bool `json:"compress"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`
}

// Config 日志配置实现
type Config struct {
	options *LogOptions
}

// New 创建日志配置，userConfig 为 *types.UserLogConfig 或 nil
func New(userConfig interface{}) *Config {
	options := createDefaultLogOptions()
	if userLog, ok := userConfig.(*configtypes.UserLogConfig); ok && userLog != nil {
		if userLog.Level != nil {
			options.Level = *userLog.Level
		}
		if userLog.FilePath != nil {
			options.FilePath = *userLog.FilePath
		}
		if userLog.ToConsole != nil {
			options.ToConsole = *userLog.ToConsole
		}
	}
	return &Config{options: options}
}

// FromOptions 包装已有选项
func FromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func createDefaultLogOptions() *LogOptions {
	return &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		FilePath:         defaultFilePath,
		MaxSize:          defaultMaxSize,
		MaxBackups:       defaultMaxBackups,
		MaxAge:           defaultMaxAge,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
	}
}

// GetOptions 获取完整的日志配置选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel 获取zap日志级别，无法识别时回退到 info
func (c *Config) GetZapLevel() zapcore.Level {
	if level, exists := levelMap[c.options.Level]; exists {
		return level
	}
	return zapcore.InfoLevel
}

// CreateFileEncoder 文件输出使用 JSON
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// CreateConsoleEncoder 控制台输出使用彩色文本
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func baseEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
