package types

import (
	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventNewUser              EventType = "NewUser"
	EventStaked               EventType = "Staked"
	EventUnstaked             EventType = "Unstaked"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
)

// Event is one entry of the append-only ledger journal. Seq is assigned by
// the ledger, starts at 1 and never repeats; replaying events in Seq order
// reconstructs registration and stake state exactly.
type Event struct {
	Seq       uint64         `json:"seq"`
	Type      EventType      `json:"type"`
	User      common.Address `json:"user"`
	Referrer  common.Address `json:"referrer,omitempty"`
	StakeID   uint64         `json:"stake_id,omitempty"`
	Amount    math.Int       `json:"amount_token,omitempty"`
	Timestamp int64          `json:"timestamp"`
	Rate      int64          `json:"rate,omitempty"`
	Option    StakeOption    `json:"option,omitempty"`
	// PreviousOwner/NewOwner are set only on OwnershipTransferred.
	PreviousOwner common.Address `json:"previous_owner,omitempty"`
	NewOwner      common.Address `json:"new_owner,omitempty"`
}
