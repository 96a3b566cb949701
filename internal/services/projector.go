package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

// StartEventProjector starts the loop that turns journaled events into
// snapshot documents, stats and queue messages. Events arrive in commit
// order and are processed one at a time.
func (s *Service) StartEventProjector(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Ctx(ctx).Info().Msg("Event projector stopped")
				return
			case event := <-s.committedEvents:
				s.projectEvent(ctx, event)
			}
		}
	}()
}

// projectEvent is best effort: a projection failure is logged and skipped,
// since every projection is rebuilt from the journal on the next start.
func (s *Service) projectEvent(ctx context.Context, event *types.Event) {
	logger := log.Ctx(ctx).With().
		Uint64("seq", event.Seq).
		Str("type", string(event.Type)).
		Logger()

	switch event.Type {
	case types.EventNewUser:
		s.projectUser(ctx, event.User, event.Timestamp)
		if (event.Referrer != common.Address{}) {
			// the referrer's referee count changed
			s.projectUser(ctx, event.Referrer, 0)
		}
	case types.EventStaked:
		s.projectUser(ctx, event.User, 0)
		s.projectStake(ctx, event.User, event.StakeID, "")
	case types.EventUnstaked:
		s.projectUser(ctx, event.User, 0)
		// the Unstaked amount is the settled payout, principal plus reward
		s.projectStake(ctx, event.User, event.StakeID, event.Amount.String())
	case types.EventOwnershipTransferred:
		state := s.ledger.AdminState()
		if err := s.db.UpsertAdminState(ctx, state.Owner.Hex(), state.Pool.Hex(), state.Paused); err != nil {
			logger.Error().Err(err).Msg("failed to project admin state")
		}
	default:
		logger.Warn().Msg("unknown event type, skipping projection")
		return
	}

	s.projectStats(ctx)

	if err := s.queueManager.PublishEvent(ctx, event); err != nil {
		logger.Error().Err(err).Msg("failed to publish event to the queue")
	}
}

func (s *Service) projectUser(ctx context.Context, addr common.Address, registeredAt int64) {
	info := s.ledger.GetUserInfo(addr)
	if !info.IsRegistered {
		return
	}

	doc := &model.UserDocument{
		Address:      addr.Hex(),
		RefereeCount: info.RefereeCount,
		ActiveStakes: info.ActiveStakes,
	}
	if (info.Referrer != common.Address{}) {
		doc.Referrer = info.Referrer.Hex()
	}
	if registeredAt != 0 {
		doc.RegisteredAt = registeredAt
	} else if existing, err := s.db.GetUser(ctx, doc.Address); err == nil {
		doc.RegisteredAt = existing.RegisteredAt
	}

	if err := s.db.UpsertUser(ctx, doc); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("user", doc.Address).
			Msg("failed to project user snapshot")
	}
}

func (s *Service) projectStake(ctx context.Context, addr common.Address, stakeID uint64, payout string) {
	details, err := s.ledger.GetStakeDetails(addr, stakeID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("user", addr.Hex()).
			Uint64("stake_id", stakeID).
			Msg("failed to read stake for projection")
		return
	}

	doc := &model.StakeDocument{
		ID:            model.StakeDocumentID(addr.Hex(), stakeID),
		StakerAddress: addr.Hex(),
		StakeID:       stakeID,
		Amount:        details.AmountStaked.String(),
		Option:        uint8(details.Option),
		Rate:          details.Rate,
		TimeStaked:    details.TimeStaked,
		StakeEndTime:  details.StakeEndTime,
		Claimed:       details.Claimed,
		Payout:        payout,
	}

	if err := s.db.UpsertStake(ctx, doc); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("stake", doc.ID).
			Msg("failed to project stake snapshot")
	}
}

func (s *Service) projectStats(ctx context.Context) {
	totals := s.ledger.OverallTotals()

	metrics.RecordTotalUsers(totals.TotalUsers)
	metrics.RecordActiveStakes(totals.ActiveStakes)

	err := s.db.UpsertOverallStats(ctx, totals.TotalUsers, totals.ActiveStakes, totals.TotalStaked.String())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to upsert overall stats")
	}
}
