package log

import "go.uber.org/zap/zapcore"

const (
	defaultLogLevel = "info"

	// 控制台输出默认开启；矿工通常前台运行
	defaultToConsole = true

	// 默认不落盘，通过配置 file_path 开启
	defaultFilePath = ""

	defaultMaxSize    = 100
	defaultMaxBackups = 5
	defaultMaxAge     = 14
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = true
)

var levelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}
