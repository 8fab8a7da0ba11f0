package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	NoColor    bool   // 禁用彩色输出
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "metaminer",
	Short: "工作量证明 nonce 搜索矿工",
	Long: `metaminer - 多工作者 Keccak-256 nonce 搜索矿工

从链预言机读取出块状态，构造承诺前缀，并行搜索满足目标值的 nonce 并提交。
链状态在搜索期间变化时放弃当前轮，按新状态重新开始。

配置文件查找顺序: --config > $METAMINER_CONFIG_PATH > configs/development/config.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if globalFlags.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
			pterm.DisableStyling()
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "禁用彩色输出")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(devnetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// printKV 以两列表格输出键值对
func printKV(rows [][]string) error {
	data := pterm.TableData{{"项目", "值"}}
	data = append(data, rows...)
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return fmt.Errorf("渲染表格: %w", err)
	}
	return nil
}
