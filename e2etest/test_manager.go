//go:build e2e

package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/pgold-labs/staking-ledger/e2etest/container"
	"github.com/pgold-labs/staking-ledger/internal/api"
	"github.com/pgold-labs/staking-ledger/internal/clients/tokenclient"
	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/db"
	"github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/queue"
	"github.com/pgold-labs/staking-ledger/internal/services"
	"github.com/pgold-labs/staking-ledger/testutil"
)

const (
	mongoUsername    = "user"
	mongoPassword    = "password"
	mongoDbName      = "e2e-ledger"
	rabbitmqUsername = "guest"
	rabbitmqPassword = "guest"
	eventsExchange   = "ledger.events"

	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 1 * time.Second
)

type TestManager struct {
	Config   *config.Config
	DbClient *db.Database
	Token    *tokenclient.MemoryToken
	Service  *services.Service
	Server   *httptest.Server

	Owner   common.Address
	Pool    common.Address
	Account common.Address

	manager *container.Manager
	cancel  context.CancelFunc
}

// StartManager boots mongo and rabbitmq containers and a full ledger stack
// on top of them: db client, in-memory token backend, queue publisher,
// service and HTTP API.
func StartManager(t *testing.T) *TestManager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	manager, err := container.NewManager(t)
	require.NoError(t, err)

	_, mongoPort, err := manager.RunMongoResource(t, mongoUsername, mongoPassword, mongoDbName)
	require.NoError(t, err)

	_, rabbitPort, err := manager.RunRabbitmqResource(t, rabbitmqUsername, rabbitmqPassword)
	require.NoError(t, err)

	owner := testutil.RandomAddress(t)
	pool := testutil.RandomAddress(t)
	account := testutil.RandomAddress(t)

	cfg := &config.Config{
		Db: config.DbConfig{
			Username: mongoUsername,
			Password: mongoPassword,
			DbName:   mongoDbName,
			Address:  fmt.Sprintf("mongodb://localhost:%s/", mongoPort),
		},
		Queue: config.QueueConfig{
			Enabled:  true,
			Url:      fmt.Sprintf("localhost:%s", rabbitPort),
			User:     rabbitmqUsername,
			Password: rabbitmqPassword,
			Exchange: eventsExchange,
		},
		Ledger: config.LedgerConfig{
			OwnerAddress:   owner.Hex(),
			PoolAddress:    pool.Hex(),
			AccountAddress: account.Hex(),
		},
		API: config.ApiConfig{
			Host:         "127.0.0.1",
			Port:         8090,
			WriteTimeout: 30 * time.Second,
			ReadTimeout:  30 * time.Second,
			IdleTimeout:  time.Minute,
		},
		Poller: config.PollerConfig{
			PoolPollingInterval: time.Minute,
		},
	}

	// wait for mongo to accept connections
	err = manager.Retry(func() error {
		client, err := db.New(ctx, cfg.Db)
		if err != nil {
			return err
		}
		return client.Ping(ctx)
	})
	require.NoError(t, err)

	// wait for rabbitmq to accept connections
	err = manager.Retry(func() error {
		conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s", rabbitmqUsername, rabbitmqPassword, cfg.Queue.Url))
		if err != nil {
			return err
		}
		return conn.Close()
	})
	require.NoError(t, err)

	require.NoError(t, model.Setup(ctx, &cfg.Db))

	dbClient, err := db.New(ctx, cfg.Db)
	require.NoError(t, err)

	token := tokenclient.NewMemoryToken(account)
	poolFunds := math.NewInt(35_000_000).MulRaw(10_000)
	token.Mint(pool, poolFunds)
	token.ApproveFrom(pool, account, poolFunds)

	qm, err := queue.NewQueueManager(&cfg.Queue)
	require.NoError(t, err)

	service := services.NewService(cfg, dbClient, token, qm)
	require.NoError(t, service.StartLedgerService(ctx))

	server := httptest.NewServer(api.New(&cfg.API, service).Handler())

	tm := &TestManager{
		Config:   cfg,
		DbClient: dbClient,
		Token:    token,
		Service:  service,
		Server:   server,
		Owner:    owner,
		Pool:     pool,
		Account:  account,
		manager:  manager,
		cancel:   cancel,
	}

	t.Cleanup(func() {
		server.Close()
		qm.Shutdown()
		cancel()
		manager.ClearResources(t)
	})

	return tm
}

// FundUser mints tokens for a fresh address and approves the ledger account
// to pull them.
func (tm *TestManager) FundUser(t *testing.T) common.Address {
	t.Helper()

	user := testutil.RandomAddress(t)
	funds := math.NewInt(10_000_000).MulRaw(10_000)
	tm.Token.Mint(user, funds)
	tm.Token.ApproveFrom(user, tm.Account, funds)
	return user
}

func (tm *TestManager) Post(t *testing.T, path string, body any) (int, []byte) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(tm.Server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}

func (tm *TestManager) Get(t *testing.T, path string) (int, []byte) {
	t.Helper()

	resp, err := http.Get(tm.Server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}
