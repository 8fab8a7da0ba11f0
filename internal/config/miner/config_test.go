package miner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configtypes "github.com/weisyn/metaminer/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	opts := New(nil).GetOptions()

	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, uint64(100000), opts.BatchSize)
	assert.Equal(t, 3*time.Second, opts.PollInterval)
	assert.Equal(t, 40, opts.InitialNonceBits)
	assert.Equal(t, 100*time.Millisecond, opts.RetryDelay)
	assert.Equal(t, configtypes.CommitmentModeBlock, opts.Mode)
	assert.Equal(t, 256, opts.PayloadSize)
	require.NoError(t, opts.Validate())
}

func TestNew_UserOverrides(t *testing.T) {
	workers := 2
	batch := uint64(10)
	poll := 50
	bits := 0
	mode := "BUS"
	meta := "0xdead"

	opts := New(&configtypes.UserMinerConfig{
		Workers:          &workers,
		BatchSize:        &batch,
		PollIntervalMs:   &poll,
		InitialNonceBits: &bits,
		Mode:             &mode,
		Meta:             &meta,
	}).GetOptions()

	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, uint64(10), opts.BatchSize)
	assert.Equal(t, 50*time.Millisecond, opts.PollInterval)
	assert.Equal(t, 0, opts.InitialNonceBits)
	assert.Equal(t, configtypes.CommitmentModeBus, opts.Mode)

	m, err := opts.Meta()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, m)

	p, err := opts.Payload()
	require.NoError(t, err)
	assert.Nil(t, p, "未配置负载时每轮随机生成")
	require.NoError(t, opts.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *MinerOptions)
	}{
		{"工作者为0", func(o *MinerOptions) { o.Workers = 0 }},
		{"批大小为0", func(o *MinerOptions) { o.BatchSize = 0 }},
		{"轮询间隔为0", func(o *MinerOptions) { o.PollInterval = 0 }},
		{"起始位数过大", func(o *MinerOptions) { o.InitialNonceBits = 64 }},
		{"未知模式", func(o *MinerOptions) { o.Mode = "pool" }},
		{"非法元数据", func(o *MinerOptions) { o.MetaHex = "zz" }},
		{"非法负载", func(o *MinerOptions) { o.PayloadHex = "0x123" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := New(nil).GetOptions()
			tt.mutate(opts)
			assert.Error(t, opts.Validate())
		})
	}
}
