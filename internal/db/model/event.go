package model

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

const EventCollection = "events"

// EventDocument is one journal entry. The sequence number is the primary key,
// so replays and concurrent writers cannot produce gaps or duplicates.
type EventDocument struct {
	Seq           uint64 `bson:"_id"`
	Type          string `bson:"type"`
	User          string `bson:"user"`
	Referrer      string `bson:"referrer,omitempty"`
	StakeID       uint64 `bson:"stake_id,omitempty"`
	Amount        string `bson:"amount"`
	Timestamp     int64  `bson:"timestamp"`
	Rate          int64  `bson:"rate,omitempty"`
	Option        uint8  `bson:"option,omitempty"`
	PreviousOwner string `bson:"previous_owner,omitempty"`
	NewOwner      string `bson:"new_owner,omitempty"`
}

func NewEventDocument(event *types.Event) *EventDocument {
	doc := &EventDocument{
		Seq:       event.Seq,
		Type:      string(event.Type),
		User:      event.User.Hex(),
		StakeID:   event.StakeID,
		Amount:    event.Amount.String(),
		Timestamp: event.Timestamp,
		Rate:      event.Rate,
		Option:    uint8(event.Option),
	}
	if (event.Referrer != common.Address{}) {
		doc.Referrer = event.Referrer.Hex()
	}
	if (event.PreviousOwner != common.Address{}) {
		doc.PreviousOwner = event.PreviousOwner.Hex()
	}
	if (event.NewOwner != common.Address{}) {
		doc.NewOwner = event.NewOwner.Hex()
	}
	return doc
}

// ToEvent converts the stored form back into the in-memory event used during
// journal replay.
func (doc *EventDocument) ToEvent() (*types.Event, error) {
	amount, ok := math.NewIntFromString(doc.Amount)
	if !ok {
		return nil, fmt.Errorf("event seq %d has malformed amount %q", doc.Seq, doc.Amount)
	}

	return &types.Event{
		Seq:           doc.Seq,
		Type:          types.EventType(doc.Type),
		User:          common.HexToAddress(doc.User),
		Referrer:      common.HexToAddress(doc.Referrer),
		StakeID:       doc.StakeID,
		Amount:        amount,
		Timestamp:     doc.Timestamp,
		Rate:          doc.Rate,
		Option:        types.StakeOption(doc.Option),
		PreviousOwner: common.HexToAddress(doc.PreviousOwner),
		NewOwner:      common.HexToAddress(doc.NewOwner),
	}, nil
}
