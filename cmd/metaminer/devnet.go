package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	logconfig "github.com/weisyn/metaminer/internal/config/log"
	"github.com/weisyn/metaminer/internal/core/chain/memory"
	"github.com/weisyn/metaminer/internal/core/chain/rpc"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/hash"
	logimpl "github.com/weisyn/metaminer/internal/core/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

// devnetFlags devnet 子命令参数
type devnetFlags struct {
	Addr          string
	Namespace     string
	Mode          string
	Target        string
	Difficulty    int
	Retarget      bool
	BlockInterval time.Duration
	AdvanceEvery  time.Duration
}

var devnetOpts devnetFlags

var devnetCmd = &cobra.Command{
	Use:   "devnet",
	Short: "以 JSON-RPC 暴露模拟链",
	Long: `启动进程内模拟链，并在 HTTP 上提供 <namespace>_getBlockInfo / <namespace>_submit

示例:
  metaminer devnet --addr 127.0.0.1:8545
  metaminer run --chain rpc --endpoint http://127.0.0.1:8545`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDevnet(devnetOpts)
	},
}

func init() {
	f := devnetCmd.Flags()
	f.StringVar(&devnetOpts.Addr, "addr", "127.0.0.1:8545", "监听地址")
	f.StringVar(&devnetOpts.Namespace, "namespace", "mining", "RPC 方法前缀")
	f.StringVar(&devnetOpts.Mode, "mode", string(types.CommitmentModeBlock), "承诺模式: block|bus")
	f.StringVar(&devnetOpts.Target, "target", "", "区块模式初始目标值，十六进制")
	f.IntVar(&devnetOpts.Difficulty, "difficulty", 2, "总线模式初始前导零字节数")
	f.BoolVar(&devnetOpts.Retarget, "retarget", true, "出块后调整目标值")
	f.DurationVar(&devnetOpts.BlockInterval, "block-interval", 2*time.Second, "期望出块间隔")
	f.DurationVar(&devnetOpts.AdvanceEvery, "advance-every", 0, "模拟其他矿工出块的间隔，0 表示不模拟")
}

// chainOptions 把命令行参数转为模拟链参数
func (f devnetFlags) chainOptions() (memory.Options, error) {
	opts := memory.Options{
		Mode:          types.CommitmentMode(f.Mode),
		Retarget:      f.Retarget,
		Difficulty:    f.Difficulty,
		BlockInterval: f.BlockInterval,
	}
	if f.Target != "" {
		t, ok := parseHexBig(f.Target)
		if !ok {
			return memory.Options{}, types.NewInvalidInput("target", "不是合法的十六进制数")
		}
		opts.Target = t
	}
	return opts, nil
}

// newDevnetRouter 在根路径挂载 JSON-RPC，并提供 /status 查看链高度
func newDevnetRouter(chain *memory.SimulatedChain, namespace string) (*gin.Engine, func(), error) {
	server, err := rpc.NewServer(namespace, chain)
	if err != nil {
		return nil, nil, fmt.Errorf("注册 RPC 服务: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/", gin.WrapH(server))
	router.GET("/status", func(c *gin.Context) {
		accepted, rejected := chain.Counters()
		c.JSON(http.StatusOK, gin.H{
			"height":   chain.Height(),
			"accepted": accepted,
			"rejected": rejected,
		})
	})
	return router, server.Stop, nil
}

func runDevnet(f devnetFlags) error {
	logger, err := logimpl.New(logconfig.New(nil))
	if err != nil {
		return err
	}
	logger = logger.With("module", "devnet")

	opts, err := f.chainOptions()
	if err != nil {
		return err
	}
	chain, err := memory.NewSimulatedChain(opts, hash.NewUncachedHashService(), logger)
	if err != nil {
		return err
	}
	router, stopRPC, err := newDevnetRouter(chain, f.Namespace)
	if err != nil {
		return err
	}
	defer stopRPC()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if f.AdvanceEvery > 0 {
		go func() {
			ticker := time.NewTicker(f.AdvanceEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					chain.Advance()
				}
			}
		}()
	}

	srv := &http.Server{Addr: f.Addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	pterm.Success.Printfln("模拟链已启动: http://%s (namespace=%s mode=%s)", f.Addr, f.Namespace, f.Mode)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP 服务: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	accepted, rejected := chain.Counters()
	pterm.Info.Printfln("模拟链已停止: height=%d accepted=%d rejected=%d", chain.Height(), accepted, rejected)
	return nil
}

// parseHexBig 解析可带 0x 前缀的十六进制非负整数
func parseHexBig(s string) (*big.Int, bool) {
	t, ok := new(big.Int).SetString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16)
	if !ok || t.Sign() < 0 {
		return nil, false
	}
	return t, true
}
