package pow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/metaminer/pkg/types"
)

func TestParseTarget(t *testing.T) {
	_, err := ParseTarget(nil)
	_, ok := types.IsInvalidInputError(err)
	assert.True(t, ok, "nil 目标应为 InvalidInput")

	_, err = ParseTarget(big.NewInt(-5))
	_, ok = types.IsInvalidInputError(err)
	assert.True(t, ok, "负目标应为 InvalidInput")

	_, err = ParseTarget(new(big.Int).Lsh(big.NewInt(1), 256))
	_, ok = types.IsInvalidInputError(err)
	assert.True(t, ok, "超过 256 位应为 InvalidInput")

	v, err := ParseTarget(MaxTarget())
	require.NoError(t, err)
	assert.Equal(t, MaxTarget(), v.ToBig())
}

func TestTargetFromDifficulty(t *testing.T) {
	target, err := TargetFromDifficulty(2)
	require.NoError(t, err)

	b := BigToBytes32(target)
	assert.Equal(t, byte(0x00), b[0])
	assert.Equal(t, byte(0x00), b[1])
	for _, v := range b[2:] {
		assert.Equal(t, byte(0xff), v)
	}

	zero, err := TargetFromDifficulty(32)
	require.NoError(t, err)
	assert.Zero(t, zero.Sign())

	easiest, err := TargetFromDifficulty(0)
	require.NoError(t, err)
	assert.Equal(t, MaxTarget(), easiest)

	_, err = TargetFromDifficulty(33)
	assert.Error(t, err)
}

func TestResolveTarget(t *testing.T) {
	explicit := big.NewInt(1000)
	got, err := ResolveTarget(&types.BlockInfo{Target: explicit, Difficulty: 3})
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	got, err = ResolveTarget(&types.BlockInfo{Difficulty: 1})
	require.NoError(t, err)
	assert.Equal(t, 248, got.BitLen())
}

func TestCompareTargets(t *testing.T) {
	adj := CompareTargets(big.NewInt(200), big.NewInt(300))
	assert.True(t, adj.Changed)
	assert.True(t, adj.Easier)
	assert.Equal(t, int64(50), adj.Percent)
	assert.Equal(t, big.NewInt(100), adj.Delta)

	adj = CompareTargets(big.NewInt(200), big.NewInt(150))
	assert.True(t, adj.Changed)
	assert.False(t, adj.Easier)
	assert.Equal(t, int64(25), adj.Percent)

	adj = CompareTargets(big.NewInt(7), big.NewInt(7))
	assert.False(t, adj.Changed)
}
