package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/weisyn/metaminer/pkg/types"
)

const (
	// EnvConfigPath 配置文件路径环境变量
	EnvConfigPath = "METAMINER_CONFIG_PATH"

	// DefaultConfigPath 开发环境默认配置
	DefaultConfigPath = "configs/development/config.json"
)

// ResolveConfigPath 确定配置文件路径：显式参数 > 环境变量 > 默认路径
func ResolveConfigPath(explicit string) (path string, isDefault bool) {
	if explicit != "" {
		return explicit, false
	}
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath, false
	}
	return DefaultConfigPath, true
}

// LoadAppConfig 加载 JSON 配置
//
// 🔧 零值陷阱处理说明：
// types.AppConfig 使用指针字段：nil 表示未设置（使用默认值），
// &value 表示明确设置，即使是 0、false、"" 也会被采用。
//
// 默认路径不存在时返回空配置；显式指定的路径不存在则报错。
func LoadAppConfig(explicit string) (*types.AppConfig, string, error) {
	path, isDefault := ResolveConfigPath(explicit)

	data, err := os.ReadFile(path)
	if err != nil {
		if isDefault && errors.Is(err, fs.ErrNotExist) {
			return &types.AppConfig{}, "", nil
		}
		return nil, path, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, path, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return &appConfig, path, nil
}
