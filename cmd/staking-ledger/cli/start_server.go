package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pgold-labs/staking-ledger/internal/api"
	"github.com/pgold-labs/staking-ledger/internal/clients/tokenclient"
	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/db"
	dbmodel "github.com/pgold-labs/staking-ledger/internal/db/model"
	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
	"github.com/pgold-labs/staking-ledger/internal/observability/tracing"
	"github.com/pgold-labs/staking-ledger/internal/queue"
	"github.com/pgold-labs/staking-ledger/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	token, err := newTokenPort(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating token client")
	}

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue manager")
	}

	service := services.NewService(cfg, dbClient, token, qm)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	if err := service.StartLedgerService(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while starting ledger service")
	}

	return api.New(&cfg.API, service).Start()
}

// newTokenPort selects the token backend. The in-memory backend keeps full
// ledger semantics without an execution layer, which is what dev environments
// and the test harness run against.
func newTokenPort(cfg *config.Config) (tokenclient.TokenPort, error) {
	if cfg.Token.Backend == config.TokenBackendMemory {
		return tokenclient.NewMemoryToken(cfg.Ledger.Account()), nil
	}

	client, err := tokenclient.NewERC20Client(&cfg.Token)
	if err != nil {
		return nil, err
	}
	return tokenclient.NewTokenPortWithMetrics(client), nil
}
