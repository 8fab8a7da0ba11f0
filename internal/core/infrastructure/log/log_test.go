package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logconfig "github.com/weisyn/metaminer/internal/config/log"
	"github.com/weisyn/metaminer/pkg/types"
)

func newBufferLogger(t *testing.T, level string) (*bytes.Buffer, *Logger) {
	t.Helper()
	var buf bytes.Buffer
	cfg := logconfig.New(&types.UserLogConfig{Level: &level})
	return &buf, NewWithWriter(&buf, cfg).(*Logger)
}

// TestInfoLog 测试信息级别日志
func TestInfoLog(t *testing.T) {
	buf, logger := newBufferLogger(t, "info")

	logger.Info("测试信息日志")
	_ = logger.Sync()

	output := buf.String()
	if !strings.Contains(output, "测试信息日志") {
		t.Error("日志输出中应包含消息内容")
	}
	if !strings.Contains(output, "\"level\":\"info\"") {
		t.Errorf("日志输出中应包含正确的日志级别: %s", output)
	}
}

// TestLevelFilter 低于配置级别的日志被丢弃
func TestLevelFilter(t *testing.T) {
	buf, logger := newBufferLogger(t, "warn")

	logger.Debug("调试")
	logger.Info("信息")
	logger.Warnf("警告 %d", 1)
	_ = logger.Sync()

	output := buf.String()
	if strings.Contains(output, "调试") || strings.Contains(output, "信息") {
		t.Errorf("warn 级别下不应输出 debug/info: %s", output)
	}
	if !strings.Contains(output, "警告 1") {
		t.Error("应输出 warn 日志")
	}
}

// TestStructuredLogging 测试结构化字段
func TestStructuredLogging(t *testing.T) {
	buf, logger := newBufferLogger(t, "info")

	NewModuleLogger(logger, "pow").With("worker", 3).Info("结构化日志测试")
	_ = logger.Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("日志输出应为单行 JSON: %v (%s)", err, buf.String())
	}
	if entry["module"] != "pow" {
		t.Errorf("module 字段错误: %v", entry["module"])
	}
	if entry["worker"] != float64(3) {
		t.Errorf("worker 字段错误: %v", entry["worker"])
	}
	if entry["message"] != "结构化日志测试" {
		t.Errorf("message 字段错误: %v", entry["message"])
	}
}

// TestFileOutput 测试文件输出
func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "miner.log")
	toConsole := false
	cfg := logconfig.New(&types.UserLogConfig{FilePath: &path, ToConsole: &toConsole})

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("创建日志器失败: %v", err)
	}
	logger.Infof("写入文件 %s", "ok")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(data), "写入文件 ok") {
		t.Errorf("日志文件内容不符: %s", data)
	}
}

// TestGlobalLogger 测试全局日志器替换
func TestGlobalLogger(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	buf, logger := newBufferLogger(t, "info")
	SetLogger(logger)
	SetLogger(nil) // 忽略 nil

	Infof("全局 %d", 42)
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "全局 42") {
		t.Errorf("全局日志器未生效: %s", buf.String())
	}
}
