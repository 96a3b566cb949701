package services

import (
	"context"

	"github.com/pgold-labs/staking-ledger/internal/clients/tokenclient"
	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/db"
	"github.com/pgold-labs/staking-ledger/internal/ledger"
	"github.com/pgold-labs/staking-ledger/internal/queue"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

const committedEventsSize = 5000

// Service wires the in-memory ledger to its surroundings: the mongo journal
// and snapshot projections, the token backend and the event queue. The ledger
// aggregate is the system of record; everything the service persists besides
// the journal is derived and rebuildable.
type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	ledger       *ledger.Ledger
	token        tokenclient.TokenPort
	queueManager *queue.QueueManager

	// committedEvents feeds journaled events to the projection loop.
	committedEvents chan *types.Event
}

func NewService(
	cfg *config.Config,
	dbClient db.DbInterface,
	token tokenclient.TokenPort,
	qm *queue.QueueManager,
) *Service {
	s := &Service{
		cfg:             cfg,
		db:              dbClient,
		token:           token,
		queueManager:    qm,
		committedEvents: make(chan *types.Event, committedEventsSize),
	}
	s.ledger = ledger.New(
		cfg.Ledger.Owner(),
		cfg.Ledger.Pool(),
		cfg.Ledger.Account(),
		token,
		s,
	)
	return s
}

// StartLedgerService bootstraps the ledger from the journal and starts the
// background loops. It returns once the service is ready to take requests.
func (s *Service) StartLedgerService(ctx context.Context) error {
	if err := s.Bootstrap(ctx); err != nil {
		return err
	}

	s.StartEventProjector(ctx)
	s.StartPoolPoller(ctx)
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
