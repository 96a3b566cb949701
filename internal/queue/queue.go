package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

// QueueManager publishes committed ledger events to a rabbitmq topic
// exchange for downstream consumers. Publishing is best effort: the journal
// in mongo is the source of truth and a failed publish only increments the
// error counter.
type QueueManager struct {
	enabled  bool
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	if !cfg.Enabled {
		return &QueueManager{}, nil
	}

	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", cfg.User, cfg.Password, cfg.Url)
	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &QueueManager{
		enabled:  true,
		exchange: cfg.Exchange,
		conn:     conn,
		channel:  channel,
	}, nil
}

// PublishEvent sends one committed event, routed by its type (e.g.
// "staking.events.Staked").
func (qm *QueueManager) PublishEvent(ctx context.Context, event *types.Event) error {
	if !qm.enabled {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event seq %d: %w", event.Seq, err)
	}

	routingKey := fmt.Sprintf("%s.%s", qm.exchange, event.Type)
	err = qm.channel.PublishWithContext(ctx,
		qm.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%d", event.Seq),
			Body:         body,
		},
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish event seq %d: %w", event.Seq, err)
	}

	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	if !qm.enabled {
		return
	}
	if err := qm.channel.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close rabbitmq channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close rabbitmq connection")
	}
}
