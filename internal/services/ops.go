package services

import (
	"context"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/ledger"
	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
	"github.com/pgold-labs/staking-ledger/internal/types"
	"github.com/pgold-labs/staking-ledger/internal/utils"
)

// RegisterUser performs the caller's one-time registration.
func (s *Service) RegisterUser(ctx context.Context, caller, referrer common.Address) *types.Error {
	done := s.recordOpDuration()
	err := s.ledger.Register(ctx, caller, referrer)
	done(err != nil)
	return err
}

// Stake opens a time-locked position for the caller.
func (s *Service) Stake(
	ctx context.Context, caller common.Address, amount math.Int, option types.StakeOption,
) (uint64, *types.Error) {
	done := s.recordOpDuration()
	stakeID, err := s.ledger.Stake(ctx, caller, amount, option)
	done(err != nil)
	return stakeID, err
}

// Unstake settles a matured stake and returns the payout.
func (s *Service) Unstake(
	ctx context.Context, caller common.Address, stakeID uint64,
) (math.Int, *types.Error) {
	done := s.recordOpDuration()
	payout, err := s.ledger.Unstake(ctx, caller, stakeID)
	done(err != nil)
	return payout, err
}

func (s *Service) GetUserInfo(addr common.Address) ledger.UserInfo {
	return s.ledger.GetUserInfo(addr)
}

func (s *Service) GetStakeDetails(addr common.Address, stakeID uint64) (*ledger.StakeDetails, *types.Error) {
	return s.ledger.GetStakeDetails(addr, stakeID)
}

func (s *Service) CalculateRewards(addr common.Address, stakeID uint64) (math.Int, *types.Error) {
	return s.ledger.CalculateRewards(addr, stakeID)
}

func (s *Service) GetStakeEndTime(addr common.Address, stakeID uint64) (int64, *types.Error) {
	return s.ledger.GetStakeEndTime(addr, stakeID)
}

func (s *Service) ListStakes(addr common.Address) []ledger.StakeDetails {
	return s.ledger.ListStakes(addr)
}

func (s *Service) OverallTotals() ledger.Totals {
	return s.ledger.OverallTotals()
}

func (s *Service) Owner() common.Address {
	return s.ledger.Owner()
}

func (s *Service) Pool() common.Address {
	return s.ledger.Pool()
}

func (s *Service) IsPaused() bool {
	return s.ledger.IsPaused()
}

// GetEventsByUser returns the journaled history of one user, newest first.
func (s *Service) GetEventsByUser(
	ctx context.Context, addr common.Address, limit int64,
) ([]model.EventDocument, error) {
	return s.db.GetEventsByUser(ctx, addr.Hex(), limit)
}

// GetOverallStats reads the persisted stats projection.
func (s *Service) GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error) {
	return s.db.GetOverallStats(ctx)
}

func (s *Service) recordOpDuration() func(failure bool) {
	operation := utils.GetFunctionName(1)
	startTime := time.Now()
	return func(failure bool) {
		metrics.RecordLedgerOpDuration(time.Since(startTime), operation, failure)
	}
}
