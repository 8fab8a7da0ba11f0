// Package configs 内嵌随二进制发布的配置模板
package configs

import _ "embed"

//go:embed development/config.json
var developmentConfig []byte

// GetDevelopmentConfig 获取开发环境配置（memory 模拟链 + 内存日志）
func GetDevelopmentConfig() []byte {
	return developmentConfig
}
