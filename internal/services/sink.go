package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

// Append journals one committed ledger event. It runs inside the ledger's
// write lock, so it must stay cheap: persist, hand the event to the
// projection loop and return. A journal write failure propagates back and
// makes the ledger unwind the operation.
func (s *Service) Append(ctx context.Context, event *types.Event) error {
	if err := s.db.SaveEvent(ctx, model.NewEventDocument(event)); err != nil {
		return err
	}

	select {
	case s.committedEvents <- event:
	default:
		// The journal has the event; only the derived projections lag. The
		// next restart rebuilds them from the journal anyway.
		log.Ctx(ctx).Warn().
			Uint64("seq", event.Seq).
			Msg("projection queue full, dropping committed event")
	}

	return nil
}
