package types

import "time"

// StakeOption selects the lock duration and base annual rate of a stake.
type StakeOption uint8

const (
	OptionSixMonths      StakeOption = 1
	OptionTwelveMonths   StakeOption = 2
	OptionEighteenMonths StakeOption = 3
)

// A month is a fixed 30-day constant, not a calendar month. The original
// system computed maturity dates this way and changing it would move them.
const monthSeconds = 30 * 24 * 3600

func (o StakeOption) Valid() bool {
	switch o {
	case OptionSixMonths, OptionTwelveMonths, OptionEighteenMonths:
		return true
	}
	return false
}

// BaseRate returns the annual percentage rate encoded as rate×1000,
// e.g. 3000 means 3.000%.
func (o StakeOption) BaseRate() int64 {
	switch o {
	case OptionSixMonths:
		return 3000
	case OptionTwelveMonths:
		return 4500
	case OptionEighteenMonths:
		return 6500
	}
	return 0
}

// Duration returns the lock duration of the option.
func (o StakeOption) Duration() time.Duration {
	switch o {
	case OptionSixMonths:
		return 6 * monthSeconds * time.Second
	case OptionTwelveMonths:
		return 12 * monthSeconds * time.Second
	case OptionEighteenMonths:
		return 18 * monthSeconds * time.Second
	}
	return 0
}

// DurationSeconds returns the lock duration in seconds.
func (o StakeOption) DurationSeconds() int64 {
	return int64(o.Duration() / time.Second)
}
