package app

import (
	"go.uber.org/fx"

	"github.com/weisyn/metaminer/pkg/interfaces/config"
	"github.com/weisyn/metaminer/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径，为空时按环境变量/默认路径查找
	configFilePath string

	// 直接给定的配置（优先级高于配置文件）
	appConfig *types.AppConfig

	// 加载后应用的覆盖（命令行参数）
	overrides []func(*types.AppConfig)

	// API支持开关 (默认启用)
	enableAPI bool

	// 额外的 fx 选项（测试、devnet 等嵌入场景）
	extra []fx.Option
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithAppConfig 直接使用给定配置，不再读取文件
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
	}
}

// WithOverride 在配置加载后修改配置
func WithOverride(fn func(*types.AppConfig)) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, fn)
	}
}

// WithoutAPI 禁用API模块
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithFxOptions 追加 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) {
		o.extra = append(o.extra, opts...)
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	options := &options{
		enableAPI: true,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// resolve 读取配置文件（未直接给定时）并应用覆盖
func (o *options) resolve() error {
	if o.appConfig == nil {
		cfg, _, err := LoadAppConfig(o.configFilePath)
		if err != nil {
			return err
		}
		o.appConfig = cfg
	}
	for _, fn := range o.overrides {
		fn(o.appConfig)
	}
	return nil
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
