package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgold-labs/staking-ledger/internal/clients/tokenclient"
	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/db"
	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/queue"
	"github.com/pgold-labs/staking-ledger/internal/services"
	"github.com/pgold-labs/staking-ledger/testutil"
)

// stubDb implements the handful of DbInterface methods the handlers reach.
// The embedded interface panics on anything else, which keeps the stub honest
// about what the API layer actually touches.
type stubDb struct {
	db.DbInterface

	mu     sync.Mutex
	events []*model.EventDocument
	admin  *model.AdminStateDocument
}

func (s *stubDb) Ping(context.Context) error { return nil }

func (s *stubDb) SaveEvent(_ context.Context, doc *model.EventDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, doc)
	return nil
}

func (s *stubDb) GetEventsByUser(_ context.Context, user string, limit int64) ([]model.EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EventDocument
	for i := len(s.events) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if s.events[i].User == user {
			out = append(out, *s.events[i])
		}
	}
	return out, nil
}

func (s *stubDb) UpsertAdminState(_ context.Context, owner, pool string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = &model.AdminStateDocument{ID: "admin_state", Owner: owner, Pool: pool, Paused: paused}
	return nil
}

type apiFixture struct {
	handler http.Handler
	token   *tokenclient.MemoryToken
	owner   common.Address
	pool    common.Address
	account common.Address
}

func newApiFixture(t *testing.T) *apiFixture {
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
		API: config.ApiConfig{
			Host:         "127.0.0.1",
			Port:         8090,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
			IdleTimeout:  time.Minute,
		},
	}

	token := tokenclient.NewMemoryToken(account)
	poolFunds := math.NewInt(35_000_000).MulRaw(10_000)
	token.Mint(pool, poolFunds)
	token.ApproveFrom(pool, account, poolFunds)

	qm, err := queue.NewQueueManager(&config.QueueConfig{Enabled: false})
	require.NoError(t, err)

	service := services.NewService(cfg, &stubDb{}, token, qm)
	server := New(&cfg.API, service)

	return &apiFixture{
		handler: server.Handler(),
		token:   token,
		owner:   owner,
		pool:    pool,
		account: account,
	}
}

func (f *apiFixture) fundedUser(t *testing.T) common.Address {
	t.Helper()

	user := testutil.RandomAddress(t)
	funds := math.NewInt(10_000_000).MulRaw(10_000)
	f.token.Mint(user, funds)
	f.token.ApproveFrom(user, f.account, funds)
	return user
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *apiFixture) register(t *testing.T, user common.Address, referrer string) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/v1/register", registerRequest{
		Address:  user.Hex(),
		Referrer: referrer,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealthcheck(t *testing.T) {
	f := newApiFixture(t)

	rec := f.do(t, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	f := newApiFixture(t)
	user := testutil.RandomAddress(t)

	rec := f.do(t, http.MethodPost, "/v1/register", registerRequest{Address: user.Hex()})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[userResponse](t, rec)
	assert.True(t, created.IsRegistered)
	assert.Zero(t, created.AmountReferees)

	t.Run("second registration is rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/register", registerRequest{Address: user.Hex()})
		assert.Equal(t, http.StatusConflict, rec.Code)

		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "ALREADY_REGISTERED", resp.ErrorCode)
		assert.Contains(t, resp.Message, "you cannot register again")
	})

	t.Run("malformed address", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/register", registerRequest{Address: "0x123"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode[errorResponse](t, rec).ErrorCode)
	})

	t.Run("referrer bookkeeping is visible on the user endpoint", func(t *testing.T) {
		referee := testutil.RandomAddress(t)
		f.register(t, referee, user.Hex())

		rec := f.do(t, http.MethodGet, "/v1/user/"+user.Hex(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint64(1), decode[userResponse](t, rec).AmountReferees)

		rec = f.do(t, http.MethodGet, "/v1/user/"+referee.Hex(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.Hex(), decode[userResponse](t, rec).Referrer)
	})
}

func TestStakeEndpoints(t *testing.T) {
	f := newApiFixture(t)
	user := f.fundedUser(t)
	f.register(t, user, "")

	rec := f.do(t, http.MethodPost, "/v1/stake", stakeRequest{
		Address: user.Hex(),
		Amount:  "1000000",
		Option:  1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(1), decode[stakeResponse](t, rec).StakeID)

	t.Run("stake details", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/v1/stake/%s/1", user.Hex()), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		details := decode[stakeDetailsResponse](t, rec)
		assert.Equal(t, "1000000", details.AmountStaked)
		assert.Equal(t, int64(3000), details.Rate)
		assert.Equal(t, uint8(1), details.Option)
		assert.False(t, details.Claimed)
		assert.False(t, details.CanClaim)
		assert.Equal(t, details.TimeStaked+6*30*24*3600, details.StakeEndTime)
	})

	t.Run("rewards", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/v1/stake/%s/1/rewards", user.Hex()), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0", decode[rewardsResponse](t, rec).CurrentRewards)
	})

	t.Run("stake list", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/stakes/"+user.Hex(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[listResponse[stakeDetailsResponse]](t, rec).Data, 1)
	})

	t.Run("unknown stake id", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/v1/stake/%s/42", user.Hex()), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decode[errorResponse](t, rec).ErrorCode)
	})

	t.Run("invalid option", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/stake", stakeRequest{
			Address: user.Hex(),
			Amount:  "1000000",
			Option:  4,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_OPTION", decode[errorResponse](t, rec).ErrorCode)
	})

	t.Run("unregistered staker", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/stake", stakeRequest{
			Address: f.fundedUser(t).Hex(),
			Amount:  "1000000",
			Option:  1,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "NOT_REGISTERED", decode[errorResponse](t, rec).ErrorCode)
	})

	t.Run("unstake before maturity", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/unstake", unstakeRequest{
			Address: user.Hex(),
			StakeID: 1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "TOO_EARLY", decode[errorResponse](t, rec).ErrorCode)
	})
}

func TestEventsEndpoint(t *testing.T) {
	f := newApiFixture(t)
	user := f.fundedUser(t)
	f.register(t, user, "")

	rec := f.do(t, http.MethodPost, "/v1/stake", stakeRequest{
		Address: user.Hex(),
		Amount:  "500000",
		Option:  2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/events/"+user.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	events := decode[listResponse[eventResponse]](t, rec).Data
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "Staked", events[0].Type)
	assert.Equal(t, "500000", events[0].Amount)
	assert.Equal(t, int64(4500), events[0].Rate)
	assert.Equal(t, "NewUser", events[1].Type)

	t.Run("limit is validated", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/events/"+user.Hex()+"?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("limit truncates", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/events/"+user.Hex()+"?limit=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[listResponse[eventResponse]](t, rec).Data, 1)
	})
}

func TestStatsEndpoint(t *testing.T) {
	f := newApiFixture(t)
	user := f.fundedUser(t)
	f.register(t, user, "")

	rec := f.do(t, http.MethodPost, "/v1/stake", stakeRequest{
		Address: user.Hex(),
		Amount:  "1000000",
		Option:  3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[statsResponse](t, rec)
	assert.Equal(t, uint64(1), stats.TotalUsers)
	assert.Equal(t, uint64(1), stats.ActiveStakes)
	assert.Equal(t, "1000000", stats.TotalStaked)
	assert.Equal(t, f.owner.Hex(), stats.Owner)
	assert.Equal(t, f.pool.Hex(), stats.Pool)
	assert.False(t, stats.Paused)
}

func TestAdminEndpoints(t *testing.T) {
	f := newApiFixture(t)

	t.Run("pause requires the owner", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/admin/pause", adminRequest{
			Caller: testutil.RandomAddress(t).Hex(),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decode[errorResponse](t, rec).ErrorCode)
	})

	t.Run("pause and unpause", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/admin/pause", adminRequest{Caller: f.owner.Hex()})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[adminStateResponse](t, rec).Paused)

		user := f.fundedUser(t)
		f.register(t, user, "")
		rec = f.do(t, http.MethodPost, "/v1/stake", stakeRequest{
			Address: user.Hex(),
			Amount:  "1000000",
			Option:  1,
		})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "CONTRACT_PAUSED", decode[errorResponse](t, rec).ErrorCode)

		rec = f.do(t, http.MethodPost, "/v1/admin/unpause", adminRequest{Caller: f.owner.Hex()})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[adminStateResponse](t, rec).Paused)
	})

	t.Run("set pool address", func(t *testing.T) {
		newPool := testutil.RandomAddress(t)
		rec := f.do(t, http.MethodPost, "/v1/admin/pool-address", setPoolRequest{
			Caller:      f.owner.Hex(),
			PoolAddress: newPool.Hex(),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, newPool.Hex(), decode[adminStateResponse](t, rec).Pool)
	})

	t.Run("ownership transfer and renounce", func(t *testing.T) {
		newOwner := testutil.RandomAddress(t)
		rec := f.do(t, http.MethodPost, "/v1/admin/transfer-ownership", transferOwnershipRequest{
			Caller:   f.owner.Hex(),
			NewOwner: newOwner.Hex(),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, newOwner.Hex(), decode[adminStateResponse](t, rec).Owner)

		// The previous owner has no admin rights left.
		rec = f.do(t, http.MethodPost, "/v1/admin/pause", adminRequest{Caller: f.owner.Hex()})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodPost, "/v1/admin/renounce-ownership", adminRequest{Caller: newOwner.Hex()})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, common.Address{}.Hex(), decode[adminStateResponse](t, rec).Owner)
	})
}
