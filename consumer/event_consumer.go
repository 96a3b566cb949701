package consumer

import (
	"github.com/pgold-labs/staking-ledger/internal/types"
)

// EventConsumer is the read side of the ledger event exchange. Downstream
// systems (reporting, notifications) implement or embed it to receive
// committed events in journal order per routing key.
type EventConsumer interface {
	Start() error
	Events() <-chan *types.Event
	Stop() error
}
