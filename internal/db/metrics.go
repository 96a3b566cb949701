package db

import (
	"context"
	"time"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveEvent(ctx context.Context, eventDoc *model.EventDocument) error {
	return d.run("SaveEvent", func() error {
		return d.db.SaveEvent(ctx, eventDoc)
	})
}

func (d *DbWithMetrics) IterateEvents(ctx context.Context, afterSeq uint64, handler func(*model.EventDocument) error) error {
	return d.run("IterateEvents", func() error {
		return d.db.IterateEvents(ctx, afterSeq, handler)
	})
}

func (d *DbWithMetrics) GetEventsByUser(ctx context.Context, userAddress string, limit int64) (result []model.EventDocument, err error) {
	//nolint:errcheck
	d.run("GetEventsByUser", func() error {
		result, err = d.db.GetEventsByUser(ctx, userAddress, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) GetLastEventSeq(ctx context.Context) (result uint64, err error) {
	//nolint:errcheck
	d.run("GetLastEventSeq", func() error {
		result, err = d.db.GetLastEventSeq(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertUser(ctx context.Context, userDoc *model.UserDocument) error {
	return d.run("UpsertUser", func() error {
		return d.db.UpsertUser(ctx, userDoc)
	})
}

func (d *DbWithMetrics) GetUser(ctx context.Context, address string) (result *model.UserDocument, err error) {
	//nolint:errcheck
	d.run("GetUser", func() error {
		result, err = d.db.GetUser(ctx, address)
		return err
	})
	return
}

func (d *DbWithMetrics) GetUsersByReferrer(ctx context.Context, referrer string) (result []model.UserDocument, err error) {
	//nolint:errcheck
	d.run("GetUsersByReferrer", func() error {
		result, err = d.db.GetUsersByReferrer(ctx, referrer)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	return d.run("UpsertStake", func() error {
		return d.db.UpsertStake(ctx, stakeDoc)
	})
}

func (d *DbWithMetrics) GetStake(ctx context.Context, stakerAddress string, stakeID uint64) (result *model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStake", func() error {
		result, err = d.db.GetStake(ctx, stakerAddress, stakeID)
		return err
	})
	return
}

func (d *DbWithMetrics) GetStakesByStaker(ctx context.Context, stakerAddress string) (result []model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStakesByStaker", func() error {
		result, err = d.db.GetStakesByStaker(ctx, stakerAddress)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertAdminState(ctx context.Context, owner, pool string, paused bool) error {
	return d.run("UpsertAdminState", func() error {
		return d.db.UpsertAdminState(ctx, owner, pool, paused)
	})
}

func (d *DbWithMetrics) GetAdminState(ctx context.Context) (result *model.AdminStateDocument, err error) {
	//nolint:errcheck
	d.run("GetAdminState", func() error {
		result, err = d.db.GetAdminState(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertOverallStats(ctx context.Context, totalUsers, activeStakes uint64, totalStaked string) error {
	return d.run("UpsertOverallStats", func() error {
		return d.db.UpsertOverallStats(ctx, totalUsers, activeStakes, totalStaked)
	})
}

func (d *DbWithMetrics) GetOverallStats(ctx context.Context) (result *model.OverallStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetOverallStats", func() error {
		result, err = d.db.GetOverallStats(ctx)
		return err
	})
	return
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
