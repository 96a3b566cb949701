package ledger

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

func TestBaseRate(t *testing.T) {
	cases := map[types.StakeOption]int64{
		types.OptionSixMonths:      3000,
		types.OptionTwelveMonths:   4500,
		types.OptionEighteenMonths: 6500,
	}
	for option, want := range cases {
		rate, err := BaseRate(option)
		require.Nil(t, err)
		assert.Equal(t, want, rate)
	}

	for _, invalid := range []types.StakeOption{0, 4, 255} {
		_, err := BaseRate(invalid)
		require.NotNil(t, err)
		assert.Equal(t, types.InvalidOption, err.ErrorCode)
	}
}

func TestDuration(t *testing.T) {
	const month = int64(30 * 24 * 3600)

	cases := map[types.StakeOption]int64{
		types.OptionSixMonths:      6 * month,
		types.OptionTwelveMonths:   12 * month,
		types.OptionEighteenMonths: 18 * month,
	}
	for option, want := range cases {
		d, err := Duration(option)
		require.Nil(t, err)
		assert.Equal(t, want, d)
	}

	_, err := Duration(types.StakeOption(7))
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidOption, err.ErrorCode)
}

func TestEffectiveRate(t *testing.T) {
	cases := []struct {
		option      types.StakeOption
		hasReferrer bool
		want        int64
	}{
		{types.OptionSixMonths, false, 3000},
		{types.OptionSixMonths, true, 5000},
		{types.OptionTwelveMonths, false, 4500},
		{types.OptionTwelveMonths, true, 6500},
		{types.OptionEighteenMonths, false, 6500},
		{types.OptionEighteenMonths, true, 8500},
	}
	for _, tc := range cases {
		rate, err := EffectiveRate(tc.option, tc.hasReferrer)
		require.Nil(t, err)
		assert.Equal(t, tc.want, rate)
	}

	_, err := EffectiveRate(0, true)
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidOption, err.ErrorCode)
}

func TestAccruedReward(t *testing.T) {
	amount := math.NewInt(100 * 10_000) // 100 tokens at 4 decimals

	t.Run("zero elapsed yields zero", func(t *testing.T) {
		assert.True(t, AccruedReward(amount, 3000, 0).IsZero())
		assert.True(t, AccruedReward(amount, 3000, -5).IsZero())
	})

	t.Run("180 days at 3 percent", func(t *testing.T) {
		elapsed := int64(180 * 24 * 3600)
		// floor(1000000 * 15552000 * 3000 / 100000 / 31536000)
		assert.Equal(t, math.NewInt(14794), AccruedReward(amount, 3000, elapsed))
	})

	t.Run("referred staker earns proportionally more", func(t *testing.T) {
		elapsed := int64(180 * 24 * 3600)
		assert.Equal(t, math.NewInt(24657), AccruedReward(amount, 5000, elapsed))
	})

	t.Run("monotonically non-decreasing in elapsed time", func(t *testing.T) {
		prev := math.ZeroInt()
		for elapsed := int64(0); elapsed <= 400*24*3600; elapsed += 12345 {
			reward := AccruedReward(amount, 6500, elapsed)
			assert.True(t, reward.GTE(prev), "reward decreased at elapsed=%d", elapsed)
			prev = reward
		}
	})

	t.Run("no overflow for large positions", func(t *testing.T) {
		// 1e9 tokens at 4 decimals locked 18 months at the max rate.
		large := math.NewInt(1_000_000_000).MulRaw(10_000)
		elapsed := int64(18 * 30 * 24 * 3600)
		reward := AccruedReward(large, 8500, elapsed)
		// 1e13 * 46656000 * 8500 / 100000 / 31536000
		assert.Equal(t, "1257534246575", reward.String())
	})
}

func TestCanClaim(t *testing.T) {
	assert.False(t, CanClaim(99, 100))
	assert.True(t, CanClaim(100, 100))
	assert.True(t, CanClaim(101, 100))
}
