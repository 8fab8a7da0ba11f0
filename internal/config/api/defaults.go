package api

const (
	defaultEnabled = true

	// 只监听本机；控制接口（start/stop）不做鉴权
	defaultHost = "127.0.0.1"
	defaultPort = 28680
)
