package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgold-labs/staking-ledger/internal/clients/tokenclient"
	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/db"
	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/queue"
	"github.com/pgold-labs/staking-ledger/internal/types"
	"github.com/pgold-labs/staking-ledger/testutil"
)

// fakeDb is an in-memory DbInterface used by the unit tests. The integration
// tests in internal/db cover the real mongo implementation.
type fakeDb struct {
	mu     sync.Mutex
	events map[uint64]*model.EventDocument
	users  map[string]*model.UserDocument
	stakes map[string]*model.StakeDocument
	admin  *model.AdminStateDocument
	stats  *model.OverallStatsDocument

	failSaveEvent bool
}

func newFakeDb() *fakeDb {
	return &fakeDb{
		events: make(map[uint64]*model.EventDocument),
		users:  make(map[string]*model.UserDocument),
		stakes: make(map[string]*model.StakeDocument),
	}
}

func (f *fakeDb) Ping(context.Context) error { return nil }

func (f *fakeDb) SaveEvent(_ context.Context, doc *model.EventDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveEvent {
		return assertAnError
	}
	if _, ok := f.events[doc.Seq]; ok {
		return &db.DuplicateKeyError{Message: "event with this sequence number already exists"}
	}
	f.events[doc.Seq] = doc
	return nil
}

func (f *fakeDb) IterateEvents(_ context.Context, afterSeq uint64, handler func(*model.EventDocument) error) error {
	f.mu.Lock()
	var seqs []uint64
	for seq := range f.events {
		if seq > afterSeq {
			seqs = append(seqs, seq)
		}
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	docs := make([]*model.EventDocument, 0, len(seqs))
	for _, seq := range seqs {
		docs = append(docs, f.events[seq])
	}
	f.mu.Unlock()

	for _, doc := range docs {
		if err := handler(doc); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeDb) GetEventsByUser(_ context.Context, user string, limit int64) ([]model.EventDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.EventDocument
	for _, doc := range f.events {
		if doc.User == user {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDb) GetLastEventSeq(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last uint64
	for seq := range f.events {
		if seq > last {
			last = seq
		}
	}
	return last, nil
}

func (f *fakeDb) UpsertUser(_ context.Context, doc *model.UserDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[doc.Address] = doc
	return nil
}

func (f *fakeDb) GetUser(_ context.Context, address string) (*model.UserDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.users[address]
	if !ok {
		return nil, &db.NotFoundError{Key: address, Message: "user not found"}
	}
	return doc, nil
}

func (f *fakeDb) GetUsersByReferrer(_ context.Context, referrer string) ([]model.UserDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.UserDocument
	for _, doc := range f.users {
		if doc.Referrer == referrer {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDb) UpsertStake(_ context.Context, doc *model.StakeDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stakes[doc.ID] = doc
	return nil
}

func (f *fakeDb) GetStake(_ context.Context, staker string, stakeID uint64) (*model.StakeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.stakes[model.StakeDocumentID(staker, stakeID)]
	if !ok {
		return nil, &db.NotFoundError{Message: "stake not found"}
	}
	return doc, nil
}

func (f *fakeDb) GetStakesByStaker(_ context.Context, staker string) ([]model.StakeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StakeDocument
	for _, doc := range f.stakes {
		if doc.StakerAddress == staker {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StakeID < out[j].StakeID })
	return out, nil
}

func (f *fakeDb) UpsertAdminState(_ context.Context, owner, pool string, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = &model.AdminStateDocument{ID: "admin_state", Owner: owner, Pool: pool, Paused: paused}
	return nil
}

func (f *fakeDb) GetAdminState(context.Context) (*model.AdminStateDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admin == nil {
		return nil, &db.NotFoundError{Message: "admin state not initialized"}
	}
	return f.admin, nil
}

func (f *fakeDb) UpsertOverallStats(_ context.Context, totalUsers, activeStakes uint64, totalStaked string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = &model.OverallStatsDocument{
		ID:           "overall_stats",
		TotalUsers:   totalUsers,
		ActiveStakes: activeStakes,
		TotalStaked:  totalStaked,
	}
	return nil
}

func (f *fakeDb) GetOverallStats(context.Context) (*model.OverallStatsDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats == nil {
		return &model.OverallStatsDocument{ID: "overall_stats", TotalStaked: "0"}, nil
	}
	return f.stats, nil
}

var assertAnError = &db.DuplicateKeyError{Message: "journal unavailable"}

type serviceFixture struct {
	service *Service
	db      *fakeDb
	token   *tokenclient.MemoryToken
	cfg     *config.Config
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	owner := testutil.RandomAddress(t)
	pool := testutil.RandomAddress(t)
	account := testutil.RandomAddress(t)

	cfg := &config.Config{
		Ledger: config.LedgerConfig{
			OwnerAddress:   owner.Hex(),
			PoolAddress:    pool.Hex(),
			AccountAddress: account.Hex(),
		},
	}

	token := tokenclient.NewMemoryToken(account)
	poolFunds := math.NewInt(35_000_000).MulRaw(10_000)
	token.Mint(pool, poolFunds)
	token.ApproveFrom(pool, account, poolFunds)

	qm, err := queue.NewQueueManager(&config.QueueConfig{Enabled: false})
	require.NoError(t, err)

	fake := newFakeDb()
	return &serviceFixture{
		service: NewService(cfg, fake, token, qm),
		db:      fake,
		token:   token,
		cfg:     cfg,
	}
}

// drainProjections processes everything the sink queued, synchronously.
func (f *serviceFixture) drainProjections(ctx context.Context) {
	for {
		select {
		case event := <-f.service.committedEvents:
			f.service.projectEvent(ctx, event)
		default:
			return
		}
	}
}

func (f *serviceFixture) fundedUser(t *testing.T) common.Address {
	t.Helper()

	user := testutil.RandomAddress(t)
	funds := math.NewInt(10_000 * 10_000)
	f.token.Mint(user, funds)
	f.token.ApproveFrom(user, f.cfg.Ledger.Account(), funds)
	require.Nil(t, f.service.RegisterUser(context.Background(), user, common.Address{}))
	return user
}

func TestServiceRegisterProjections(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user := testutil.RandomAddress(t)
	referred := testutil.RandomAddress(t)

	require.Nil(t, f.service.RegisterUser(ctx, user, common.Address{}))
	require.Nil(t, f.service.RegisterUser(ctx, referred, user))
	f.drainProjections(ctx)

	t.Run("user snapshots", func(t *testing.T) {
		userDoc, err := f.db.GetUser(ctx, user.Hex())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), userDoc.RefereeCount)
		assert.Empty(t, userDoc.Referrer)

		referredDoc, err := f.db.GetUser(ctx, referred.Hex())
		require.NoError(t, err)
		assert.Equal(t, user.Hex(), referredDoc.Referrer)
	})

	t.Run("stats projection", func(t *testing.T) {
		stats, err := f.service.GetOverallStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), stats.TotalUsers)
	})

	t.Run("journal persisted", func(t *testing.T) {
		last, err := f.db.GetLastEventSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), last)
	})
}

func TestServiceStakeProjections(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user := f.fundedUser(t)
	amount := math.NewInt(1_000_000)
	stakeID, err := f.service.Stake(ctx, user, amount, types.OptionSixMonths)
	require.Nil(t, err)
	f.drainProjections(ctx)

	t.Run("stake snapshot", func(t *testing.T) {
		doc, dbErr := f.db.GetStake(ctx, user.Hex(), stakeID)
		require.NoError(t, dbErr)
		assert.Equal(t, "1000000", doc.Amount)
		assert.Equal(t, int64(3000), doc.Rate)
		assert.False(t, doc.Claimed)
		assert.Empty(t, doc.Payout)
	})

	t.Run("user snapshot tracks active stakes", func(t *testing.T) {
		doc, dbErr := f.db.GetUser(ctx, user.Hex())
		require.NoError(t, dbErr)
		assert.Equal(t, uint64(1), doc.ActiveStakes)
	})

	t.Run("stats track locked principal", func(t *testing.T) {
		stats, dbErr := f.service.GetOverallStats(ctx)
		require.NoError(t, dbErr)
		assert.Equal(t, uint64(1), stats.ActiveStakes)
		assert.Equal(t, "1000000", stats.TotalStaked)
	})

	t.Run("journal failure fails the operation", func(t *testing.T) {
		f.db.failSaveEvent = true
		defer func() { f.db.failSaveEvent = false }()

		_, stakeErr := f.service.Stake(ctx, user, amount, types.OptionSixMonths)
		require.NotNil(t, stakeErr)
		assert.Equal(t, types.InternalServiceError, stakeErr.ErrorCode)
	})
}

func TestServiceUserHistory(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user := f.fundedUser(t)
	_, err := f.service.Stake(ctx, user, math.NewInt(500_000), types.OptionTwelveMonths)
	require.Nil(t, err)

	events, dbErr := f.service.GetEventsByUser(ctx, user, 10)
	require.NoError(t, dbErr)
	require.Len(t, events, 2)
	// newest first
	assert.Equal(t, string(types.EventStaked), events[0].Type)
	assert.Equal(t, string(types.EventNewUser), events[1].Type)
}

func TestServiceBootstrap(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user := f.fundedUser(t)
	stakeID, err := f.service.Stake(ctx, user, math.NewInt(2_000_000), types.OptionEighteenMonths)
	require.Nil(t, err)
	require.Nil(t, f.service.PauseContract(ctx, f.cfg.Ledger.Owner()))

	// a fresh service against the same database must come back identical
	restarted := &serviceFixture{
		db:    f.db,
		token: f.token,
		cfg:   f.cfg,
	}
	qm, qmErr := queue.NewQueueManager(&config.QueueConfig{Enabled: false})
	require.NoError(t, qmErr)
	restarted.service = NewService(f.cfg, f.db, f.token, qm)
	require.NoError(t, restarted.service.Bootstrap(ctx))

	info := restarted.service.GetUserInfo(user)
	assert.True(t, info.IsRegistered)
	assert.Equal(t, uint64(1), info.ActiveStakes)

	details, derr := restarted.service.GetStakeDetails(user, stakeID)
	require.Nil(t, derr)
	assert.Equal(t, int64(6500), details.Rate)

	assert.True(t, restarted.service.IsPaused())
	assert.Equal(t, f.cfg.Ledger.Owner(), restarted.service.Owner())
}

func TestServiceBootstrapSeedsAdminState(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Bootstrap(ctx))

	state, err := f.db.GetAdminState(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.cfg.Ledger.OwnerAddress, state.Owner)
	assert.Equal(t, f.cfg.Ledger.PoolAddress, state.Pool)
	assert.False(t, state.Paused)
}

func TestServiceAdminPersistence(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	owner := f.cfg.Ledger.Owner()

	t.Run("unauthorized callers are rejected", func(t *testing.T) {
		err := f.service.PauseContract(ctx, testutil.RandomAddress(t))
		require.NotNil(t, err)
		assert.Equal(t, types.Unauthorized, err.ErrorCode)
		assert.Nil(t, f.db.admin)
	})

	t.Run("pause persists", func(t *testing.T) {
		require.Nil(t, f.service.PauseContract(ctx, owner))

		state, err := f.db.GetAdminState(ctx)
		require.NoError(t, err)
		assert.True(t, state.Paused)

		require.Nil(t, f.service.UnpauseContract(ctx, owner))
	})

	t.Run("pool change persists", func(t *testing.T) {
		newPool := testutil.RandomAddress(t)
		require.Nil(t, f.service.SetPoolAddress(ctx, owner, newPool))

		state, err := f.db.GetAdminState(ctx)
		require.NoError(t, err)
		assert.Equal(t, newPool.Hex(), state.Pool)
	})

	t.Run("ownership transfer persists and journals", func(t *testing.T) {
		newOwner := testutil.RandomAddress(t)
		require.Nil(t, f.service.TransferOwnership(ctx, owner, newOwner))

		state, err := f.db.GetAdminState(ctx)
		require.NoError(t, err)
		assert.Equal(t, newOwner.Hex(), state.Owner)

		last, err := f.db.GetLastEventSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, string(types.EventOwnershipTransferred), f.db.events[last].Type)

		require.Nil(t, f.service.RenounceOwnership(ctx, newOwner))
		state, err = f.db.GetAdminState(ctx)
		require.NoError(t, err)
		assert.Equal(t, common.Address{}.Hex(), state.Owner)
	})
}
