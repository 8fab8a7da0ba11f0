// Package log 提供基于 zap 的日志实现
//
// 控制台输出使用彩色文本编码，文件输出使用 JSON 并由 lumberjack 轮转。
// 进程启动时以默认配置初始化全局日志器，fx 模块加载配置后替换。
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	logconfig "github.com/weisyn/metaminer/internal/config/log"
	logInterface "github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 实现 log.Logger 接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

func init() {
	ResetDefault()
}

// ResetDefault 重置全局日志记录器为默认配置
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化默认日志器失败: %v\n", err)
		return
	}
	SetLogger(logger)
}

// New 根据配置创建日志记录器
func New(config *logconfig.Config) (logInterface.Logger, error) {
	opts := config.GetOptions()
	level := zap.NewAtomicLevelAt(config.GetZapLevel())

	var cores []zapcore.Core
	if opts.ToConsole {
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), zapcore.AddSync(os.Stdout), level))
	}
	if opts.FilePath != "" {
		writer, err := createFileWriter(opts)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(config.CreateFileEncoder(), writer, level))
	}

	return newFromCore(zapcore.NewTee(cores...), opts), nil
}

// NewWithWriter 创建写入 w 的日志器（JSON 编码），用于测试与嵌入
func NewWithWriter(w io.Writer, config *logconfig.Config) logInterface.Logger {
	core := zapcore.NewCore(config.CreateFileEncoder(), zapcore.AddSync(w), zap.NewAtomicLevelAt(config.GetZapLevel()))
	return newFromCore(core, config.GetOptions())
}

// NewNop 返回丢弃所有输出的日志器
func NewNop() logInterface.Logger {
	z := zap.NewNop()
	return &Logger{zapLogger: z, sugar: z.Sugar()}
}

func newFromCore(core zapcore.Core, opts *logconfig.LogOptions) *Logger {
	var zapOptions []zap.Option
	if opts.EnableCaller {
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if opts.EnableStacktrace {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	zapLogger := zap.New(core, zapOptions...)
	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}
}

func createFileWriter(opts *logconfig.LogOptions) (zapcore.WriteSyncer, error) {
	absPath, err := filepath.Abs(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0700); err != nil {
		return nil, fmt.Errorf("创建日志目录失败 %s: %w", filepath.Dir(absPath), err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   absPath,
		MaxSize:    opts.MaxSize, // megabytes
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge, // days
		Compress:   opts.Compress,
	}), nil
}

// GetZapLogger 获取底层 zap.Logger
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

func (l *Logger) Debug(msg string) { l.sugar.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(msg string) { l.sugar.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(msg string) { l.sugar.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(msg string) { l.sugar.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *Logger) Fatal(msg string) { l.sugar.Fatal(msg) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回附加键值对字段的日志器
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	sugar := l.sugar.With(args...)
	return &Logger{zapLogger: sugar.Desugar(), sugar: sugar}
}

// Sync 刷新缓冲；控制台 fd 上的 EINVAL 等错误由调用方忽略
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Info 使用全局日志器记录
func Info(msg string) {
	if l := GetLogger(); l != nil {
		l.Info(msg)
	}
}

// Infof 使用全局日志器记录
func Infof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

// Warnf 使用全局日志器记录
func Warnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

// Errorf 使用全局日志器记录
func Errorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}

var _ logInterface.Logger = (*Logger)(nil)
