// metaminer 工作量证明挖矿进程入口
//
// 子命令：
//   - run: 启动矿工（可选 HTTP API）
//   - bench: 测量本机 Keccak-256 算力
//   - verify: 重新计算并校验一个 nonce
//   - devnet: 以 JSON-RPC 暴露一条模拟链，供 rpc 类型预言机连接
//   - config init: 写出默认配置文件
//   - version: 版本信息
package main

func main() {
	Execute()
}
