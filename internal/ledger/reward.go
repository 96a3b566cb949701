package ledger

import (
	"net/http"

	"cosmossdk.io/math"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

const (
	// rateDivisor converts a rate×1000 annual percentage into a fraction.
	rateDivisor = 100_000
	// yearSeconds is the 365-day year used by the reward formula. The lock
	// durations use 30-day months; both constants are inherited from the
	// original system and must not be made calendar-accurate.
	yearSeconds = 365 * 24 * 3600

	// ReferralBonusRate is the fixed rate×1000 bonus granted once to stakers
	// who registered with a non-zero referrer.
	ReferralBonusRate = 2000
)

// BaseRate returns the annual rate×1000 of a stake option.
func BaseRate(option types.StakeOption) (int64, *types.Error) {
	if !option.Valid() {
		return 0, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidOption,
			"stake option must be 1, 2 or 3",
		)
	}
	return option.BaseRate(), nil
}

// Duration returns the lock duration of a stake option in seconds.
func Duration(option types.StakeOption) (int64, *types.Error) {
	if !option.Valid() {
		return 0, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidOption,
			"stake option must be 1, 2 or 3",
		)
	}
	return option.DurationSeconds(), nil
}

// EffectiveRate is the rate fixed on a stake at creation: the option's base
// rate plus the referral bonus when the staker has a referrer.
func EffectiveRate(option types.StakeOption, hasReferrer bool) (int64, *types.Error) {
	base, err := BaseRate(option)
	if err != nil {
		return 0, err
	}
	if hasReferrer {
		return base + ReferralBonusRate, nil
	}
	return base, nil
}

// AccruedReward computes floor(amount * elapsed * rate / 100000 / yearSeconds)
// in token base units. The two floor divisions are applied in exactly this
// order so results are reproducible bit for bit; the reward never exceeds the
// real-valued ideal.
func AccruedReward(amount math.Int, rate int64, elapsedSeconds int64) math.Int {
	if elapsedSeconds <= 0 {
		return math.ZeroInt()
	}
	return amount.
		MulRaw(elapsedSeconds).
		MulRaw(rate).
		QuoRaw(rateDivisor).
		QuoRaw(yearSeconds)
}

// CanClaim reports whether a stake has reached maturity.
func CanClaim(now, stakeEndTime int64) bool {
	return now >= stakeEndTime
}
