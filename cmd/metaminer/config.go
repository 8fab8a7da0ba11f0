package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/metaminer/configs"
	"github.com/weisyn/metaminer/internal/app"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置文件管理",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "写出默认开发配置",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := app.DefaultConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := writeDefaultConfig(path, configForce); err != nil {
			return err
		}
		pterm.Success.Printfln("已写入 %s", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "显示将被加载的配置文件路径",
	Run: func(cmd *cobra.Command, args []string) {
		path, isDefault := app.ResolveConfigPath(globalFlags.ConfigPath)
		if isDefault {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (默认)\n", path)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "覆盖已存在的文件")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// writeDefaultConfig 写出内嵌的开发配置；文件已存在且未指定 force 时报错
func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s 已存在，使用 --force 覆盖", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录: %w", err)
	}
	return os.WriteFile(path, configs.GetDevelopmentConfig(), 0o644)
}
