package consumer

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

const eventsChanSize = 1000

var _ EventConsumer = (*AmqpConsumer)(nil)

// AmqpConsumer subscribes a durable queue to the ledger event exchange and
// decodes deliveries back into events. One consumer owns one queue; competing
// consumers should each declare their own queue name.
type AmqpConsumer struct {
	cfg       *config.QueueConfig
	queueName string

	conn    *amqp.Connection
	channel *amqp.Channel
	events  chan *types.Event
	quit    chan struct{}
}

func NewAmqpConsumer(cfg *config.QueueConfig, queueName string) *AmqpConsumer {
	return &AmqpConsumer{
		cfg:       cfg,
		queueName: queueName,
		events:    make(chan *types.Event, eventsChanSize),
		quit:      make(chan struct{}),
	}
}

func (c *AmqpConsumer) Start() error {
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", c.cfg.User, c.cfg.Password, c.cfg.Url)
	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", c.queueName, err)
	}

	// "<exchange>.*" matches every event type routing key.
	bindingKey := fmt.Sprintf("%s.*", c.cfg.Exchange)
	if err := channel.QueueBind(queue.Name, bindingKey, c.cfg.Exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	deliveries, err := channel.Consume(
		queue.Name,
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to start consuming from %s: %w", queue.Name, err)
	}

	c.conn = conn
	c.channel = channel
	go c.run(deliveries)
	return nil
}

func (c *AmqpConsumer) Events() <-chan *types.Event {
	return c.events
}

func (c *AmqpConsumer) Stop() error {
	close(c.quit)
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return err
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *AmqpConsumer) run(deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-c.quit:
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			var event types.Event
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				log.Error().Err(err).
					Str("messageId", delivery.MessageId).
					Msg("Failed to decode ledger event, skipping")
				continue
			}
			c.events <- &event
		}
	}
}
