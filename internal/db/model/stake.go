package model

import "fmt"

const StakeCollection = "stakes"

// StakeDocument is the snapshot projection of one stake. Amounts are stored
// as decimal strings since token base units exceed what int64 can hold.
type StakeDocument struct {
	ID            string `bson:"_id"` // <staker>:<stake_id>
	StakerAddress string `bson:"staker_address"`
	StakeID       uint64 `bson:"stake_id"`
	Amount        string `bson:"amount"`
	Option        uint8  `bson:"option"`
	Rate          int64  `bson:"rate"`
	TimeStaked    int64  `bson:"time_staked"`
	StakeEndTime  int64  `bson:"stake_end_time"`
	Claimed       bool   `bson:"claimed"`
	Payout        string `bson:"payout,omitempty"`
}

func StakeDocumentID(stakerAddress string, stakeID uint64) string {
	return fmt.Sprintf("%s:%d", stakerAddress, stakeID)
}
