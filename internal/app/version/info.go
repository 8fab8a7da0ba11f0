// Package version 提供构建版本信息，通过 ldflags 注入
package version

import (
	"fmt"
	"runtime"
)

// 构建时注入的变量
//
//	go build -ldflags "-X github.com/weisyn/metaminer/internal/app/version.Version=v0.2.0"
var (
	Version   = "v0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo 完整构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion 多行版本描述
func GetFullVersion() string {
	info := GetBuildInfo()
	return fmt.Sprintf("metaminer %s\ncommit: %s\n构建时间: %s\nGo版本: %s\n平台: %s",
		info.Version, info.GitCommit, info.BuildTime, info.GoVersion, info.Platform)
}
