package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/db"
	dbmodel "github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/ledger"
)

// Bootstrap rebuilds the in-memory aggregate from the journal and restores
// the persisted admin configuration. On a fresh database the admin state is
// seeded from the config.
func (s *Service) Bootstrap(ctx context.Context) error {
	logger := log.Ctx(ctx)

	var replayed uint64
	err := s.db.IterateEvents(ctx, 0, func(doc *dbmodel.EventDocument) error {
		event, err := doc.ToEvent()
		if err != nil {
			return err
		}
		if err := s.ledger.Restore(event); err != nil {
			return err
		}
		replayed++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replay the event journal: %w", err)
	}

	if err := s.restoreAdminState(ctx); err != nil {
		return err
	}

	totals := s.ledger.OverallTotals()
	logger.Info().
		Uint64("replayed_events", replayed).
		Uint64("total_users", totals.TotalUsers).
		Uint64("active_stakes", totals.ActiveStakes).
		Str("owner", s.ledger.Owner().Hex()).
		Str("pool", s.ledger.Pool().Hex()).
		Msg("ledger bootstrapped from journal")
	return nil
}

// restoreAdminState applies the persisted admin doc. It wins over whatever
// the replay derived, since pause toggles and pool changes are not journaled.
func (s *Service) restoreAdminState(ctx context.Context) error {
	state, err := s.db.GetAdminState(ctx)
	if db.IsNotFoundError(err) {
		cfg := s.cfg.Ledger
		if err := s.db.UpsertAdminState(ctx, cfg.OwnerAddress, cfg.PoolAddress, false); err != nil {
			return fmt.Errorf("failed to seed admin state: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load admin state: %w", err)
	}

	s.ledger.RestoreAdminState(ledger.AdminState{
		Owner:  common.HexToAddress(state.Owner),
		Pool:   common.HexToAddress(state.Pool),
		Paused: state.Paused,
	})
	return nil
}
