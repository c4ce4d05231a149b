package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/pkg/logger"
	"github.com/okian/leaguecast/pkg/metrics"
	"github.com/streadway/amqp"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes finished jobs to a topic exchange with the routing
// key "forecast.<status>".
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   logger.Logger
	now      func() time.Time
}

// DialAMQP connects to url and declares exchange as a durable topic exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 30 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	p, err := NewAMQPPublisher(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewAMQPPublisher declares exchange on ch and returns a publisher using it.
func NewAMQPPublisher(ch Channel, exchange string) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &AMQPPublisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger.Get().Named("amqp-publisher"),
		now:      time.Now,
	}, nil
}

// RoutingKey returns the key a result is published under.
func RoutingKey(status model.JobStatus) string {
	return "forecast." + string(status)
}

// Notify publishes res as a persistent JSON message.
func (p *AMQPPublisher) Notify(ctx context.Context, res model.JobResult) error { //nolint:gocritic // hugeParam
	now := p.now()
	body, err := json.Marshal(newMessage(res, now))
	if err != nil {
		metrics.RecordNotification("amqp", "error")
		return err
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordNotification("amqp", "error")
		return err
	}

	err = p.channel.Publish(p.exchange, RoutingKey(res.Status), false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: res.Job.ID,
		Timestamp:     now,
		Body:          body,
	})
	if err != nil {
		metrics.RecordNotification("amqp", "error")
		metrics.RecordErrorByComponent("notify", "amqp_publish")
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	metrics.RecordNotification("amqp", "sent")
	p.logger.Debug(ctx, "published job result",
		logger.String("job_id", res.Job.ID),
		logger.String("routing_key", RoutingKey(res.Status)),
	)
	return nil
}

// Close closes the channel and, when dialled by DialAMQP, the connection.
func (p *AMQPPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
