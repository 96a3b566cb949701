package services

import (
	"context"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
	"github.com/pgold-labs/staking-ledger/internal/types"
	"github.com/pgold-labs/staking-ledger/internal/utils/poller"
)

// StartPoolPoller starts the loop that tracks the pool's settlement capacity.
func (s *Service) StartPoolPoller(ctx context.Context) {
	poolPoller := poller.NewPoller(
		s.cfg.Poller.PoolPollingInterval,
		metrics.RecordPollerDuration("pool", s.observePoolCapacity),
	)
	go poolPoller.Start(ctx)
}

// observePoolCapacity records the pool's balance and its allowance towards
// the ledger account. A pool that cannot cover outstanding principal is the
// operational signal to fund it before settlements start failing.
func (s *Service) observePoolCapacity(ctx context.Context) *types.Error {
	pool := s.ledger.Pool()

	balance, err := s.token.BalanceOf(ctx, pool)
	if err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to read pool balance: %w", err))
	}
	allowance, err := s.token.Allowance(ctx, pool, s.cfg.Ledger.Account())
	if err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to read pool allowance: %w", err))
	}

	metrics.RecordPoolBalance(approxUnits(balance))
	metrics.RecordPoolAllowance(approxUnits(allowance))

	outstanding := s.ledger.OverallTotals().TotalStaked
	if balance.LT(outstanding) || allowance.LT(outstanding) {
		log.Ctx(ctx).Warn().
			Str("pool", pool.Hex()).
			Str("balance", balance.String()).
			Str("allowance", allowance.String()).
			Str("outstanding_principal", outstanding.String()).
			Msg("pool capacity below outstanding principal")
	}

	return nil
}

// approxUnits converts base units to a float for gauges. Precision loss is
// acceptable there.
func approxUnits(amount math.Int) float64 {
	f, _ := new(big.Float).SetInt(amount.BigInt()).Float64()
	return f
}
