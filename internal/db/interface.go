package db

import (
	"context"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	SaveEvent(ctx context.Context, eventDoc *model.EventDocument) error
	IterateEvents(ctx context.Context, afterSeq uint64, handler func(*model.EventDocument) error) error
	GetEventsByUser(ctx context.Context, userAddress string, limit int64) ([]model.EventDocument, error)
	GetLastEventSeq(ctx context.Context) (uint64, error)

	UpsertUser(ctx context.Context, userDoc *model.UserDocument) error
	GetUser(ctx context.Context, address string) (*model.UserDocument, error)
	GetUsersByReferrer(ctx context.Context, referrer string) ([]model.UserDocument, error)

	UpsertStake(ctx context.Context, stakeDoc *model.StakeDocument) error
	GetStake(ctx context.Context, stakerAddress string, stakeID uint64) (*model.StakeDocument, error)
	GetStakesByStaker(ctx context.Context, stakerAddress string) ([]model.StakeDocument, error)

	UpsertAdminState(ctx context.Context, owner, pool string, paused bool) error
	GetAdminState(ctx context.Context) (*model.AdminStateDocument, error)

	UpsertOverallStats(ctx context.Context, totalUsers, activeStakes uint64, totalStaked string) error
	GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error)
}
