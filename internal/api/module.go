// Package api 组装对外接口
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/metaminer/internal/api/http"
)

// Module 返回API模块
//
// Invoke 保证即使没有其他组件依赖 *http.Server，服务器也会被构造并注册生命周期。
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}
