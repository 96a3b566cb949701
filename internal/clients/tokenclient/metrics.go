package tokenclient

import (
	"context"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
)

type tokenPortWithMetrics struct {
	token TokenPort
}

func NewTokenPortWithMetrics(token TokenPort) *tokenPortWithMetrics {
	return &tokenPortWithMetrics{token: token}
}

func (t *tokenPortWithMetrics) BalanceOf(ctx context.Context, account common.Address) (math.Int, error) {
	return runTokenMethodWithMetrics("BalanceOf", func() (math.Int, error) {
		return t.token.BalanceOf(ctx, account)
	})
}

func (t *tokenPortWithMetrics) Allowance(ctx context.Context, owner, spender common.Address) (math.Int, error) {
	return runTokenMethodWithMetrics("Allowance", func() (math.Int, error) {
		return t.token.Allowance(ctx, owner, spender)
	})
}

func (t *tokenPortWithMetrics) Approve(ctx context.Context, spender common.Address, amount math.Int) error {
	_, err := runTokenMethodWithMetrics("Approve", func() (struct{}, error) {
		return struct{}{}, t.token.Approve(ctx, spender, amount)
	})
	return err
}

func (t *tokenPortWithMetrics) Transfer(ctx context.Context, to common.Address, amount math.Int) error {
	_, err := runTokenMethodWithMetrics("Transfer", func() (struct{}, error) {
		return struct{}{}, t.token.Transfer(ctx, to, amount)
	})
	return err
}

func (t *tokenPortWithMetrics) TransferFrom(ctx context.Context, from, to common.Address, amount math.Int) error {
	_, err := runTokenMethodWithMetrics("TransferFrom", func() (struct{}, error) {
		return struct{}{}, t.token.TransferFrom(ctx, from, to, amount)
	})
	return err
}

func runTokenMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordTokenClientLatency(duration, method, err != nil)
	return v, err
}
