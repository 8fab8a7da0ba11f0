package config

import "github.com/weisyn/metaminer/pkg/types"

// AppOptions 应用配置选项接口
type AppOptions interface {
	GetAppConfig() *types.AppConfig
}
