package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/metaminer/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	path, isDefault := ResolveConfigPath("")
	assert.Equal(t, DefaultConfigPath, path)
	assert.True(t, isDefault)

	t.Setenv(EnvConfigPath, "/etc/metaminer.json")
	path, isDefault = ResolveConfigPath("")
	assert.Equal(t, "/etc/metaminer.json", path)
	assert.False(t, isDefault)

	path, _ = ResolveConfigPath("custom.json")
	assert.Equal(t, "custom.json", path, "显式参数优先于环境变量")
}

func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, "")

	t.Run("解析配置文件", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"miner": {"workers": 4, "mode": "bus", "auto_start": false},
			"chain": {"type": "rpc", "endpoint": "http://node:8545"}
		}`), 0o644))

		cfg, used, err := LoadAppConfig(path)
		require.NoError(t, err)
		assert.Equal(t, path, used)
		require.NotNil(t, cfg.Miner)
		assert.Equal(t, 4, *cfg.Miner.Workers)
		assert.Equal(t, "bus", *cfg.Miner.Mode)
		assert.False(t, *cfg.Miner.AutoStart)
		assert.Nil(t, cfg.Miner.BatchSize, "未设置的字段保持 nil")
		assert.Equal(t, "http://node:8545", *cfg.Chain.Endpoint)
	})

	t.Run("非法JSON", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"miner":`), 0o644))
		_, _, err := LoadAppConfig(path)
		assert.Error(t, err)
	})

	t.Run("显式路径不存在", func(t *testing.T) {
		_, _, err := LoadAppConfig(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("默认路径不存在时使用默认值", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		cfg, used, err := LoadAppConfig("")
		require.NoError(t, err)
		assert.Empty(t, used)
		assert.NotNil(t, cfg)
	})
}

func TestOptions_OverridesApplyAfterLoad(t *testing.T) {
	opts := newOptions(
		WithAppConfig(&types.AppConfig{Miner: &types.UserMinerConfig{Workers: ptr(2)}}),
		WithOverride(func(c *types.AppConfig) { c.Miner.Workers = ptr(6) }),
		WithoutAPI(),
	)
	require.NoError(t, opts.resolve())
	assert.Equal(t, 6, *opts.GetAppConfig().Miner.Workers)
	assert.False(t, opts.enableAPI)
}

func TestCreateFxApp_InvalidConfig(t *testing.T) {
	b := NewBootstrap(newOptions(
		WithAppConfig(&types.AppConfig{Chain: &types.UserChainConfig{Type: ptr("carrier-pigeon")}}),
		WithoutAPI(),
	))
	assert.Error(t, b.CreateFxApp())
}

// TestStart_MineOnceOnSimulatedChain 完整装配：模拟链 + 内存 journal，挖出一个块后停止
func TestStart_MineOnceOnSimulatedChain(t *testing.T) {
	cfg := &types.AppConfig{
		Log: &types.UserLogConfig{Level: ptr("error")},
		Miner: &types.UserMinerConfig{
			Workers:        ptr(2),
			BatchSize:      ptr(uint64(1000)),
			PollIntervalMs: ptr(50),
			RetryDelayMs:   ptr(10),
			PayloadSize:    ptr(8),
			AutoStart:      ptr(false),
		},
		Chain: &types.UserChainConfig{
			Type:              ptr("memory"),
			SimulatedTarget:   ptr("0x0fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
			SimulatedRetarget: ptr(false),
		},
		Journal: &types.UserJournalConfig{Backend: ptr("memory")},
	}

	a, err := Start(WithAppConfig(cfg), WithoutAPI())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop() })

	require.NotNil(t, a.Miner())
	require.NotNil(t, a.SimulatedChain())
	assert.Nil(t, a.HTTPServer())
	assert.Equal(t, 2, a.Config().GetMiner().Workers)
	assert.Contains(t, a.String(), "chain=memory")

	require.NoError(t, a.Miner().StartMiningOnce(context.Background()))
	done := a.Miner().Done()
	require.NotNil(t, done)
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("单次挖矿未在时限内完成")
	}

	accepted, _ := a.SimulatedChain().Counters()
	assert.Equal(t, uint64(1), accepted)
	assert.Equal(t, uint64(1), a.SimulatedChain().Height())

	require.NoError(t, a.Stop())
}
