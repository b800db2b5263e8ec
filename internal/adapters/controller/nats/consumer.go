package nats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/stan.go"

	"github.com/orgcore/notification-service/internal/domain/common/errorz"
	"github.com/orgcore/notification-service/internal/domain/dto"
	"github.com/orgcore/notification-service/pkg/logger/types"
)

type ingestService interface {
	Ingest(ctx context.Context, msg dto.NotificationMessage) error
}

type Options struct {
	URL         string
	ClusterID   string
	ClientID    string
	Subject     string
	QueueGroup  string
	DurableName string
	AckWait     time.Duration
}

// Consumer is the Event Source adapter: a durable queue subscription that
// decodes notification messages and hands them to ingestion.
//
// Ack policy: success and permanently-invalid input are acked; anything
// else is left unacked so the server redelivers. Redelivery is safe, the
// ingestion path is idempotent.
type Consumer struct {
	nc      *nats.Conn
	sc      stan.Conn
	sub     stan.Subscription
	opts    Options
	service ingestService
	logger  *types.Logger
}

func NewConsumer(opts Options, service ingestService, logger *types.Logger) (*Consumer, error) {
	nc, err := nats.Connect(opts.URL, nats.Name(opts.ClientID))
	if err != nil {
		return nil, err
	}

	sc, err := stan.Connect(opts.ClusterID, opts.ClientID, stan.NatsConn(nc))
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Consumer{
		nc:      nc,
		sc:      sc,
		opts:    opts,
		service: service,
		logger:  logger,
	}, nil
}

func (c *Consumer) Start() error {
	subOpts := []stan.SubscriptionOption{
		stan.DurableName(c.opts.DurableName),
		stan.SetManualAckMode(),
	}
	if c.opts.AckWait > 0 {
		subOpts = append(subOpts, stan.AckWait(c.opts.AckWait))
	}

	sub, err := c.sc.QueueSubscribe(c.opts.Subject, c.opts.QueueGroup, c.handle, subOpts...)
	if err != nil {
		return err
	}
	c.sub = sub

	c.logger.Infof("Consuming notification messages (subject=%s, queue=%s)", c.opts.Subject, c.opts.QueueGroup)
	return nil
}

func (c *Consumer) handle(m *stan.Msg) {
	var msg dto.NotificationMessage
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		c.logger.Errorf("dropping undecodable notification message (seq=%d): %v", m.Sequence, err)
		c.ack(m)
		return
	}

	err := c.service.Ingest(context.Background(), msg)
	switch {
	case err == nil:
	case errors.Is(err, errorz.ErrInvalidArgument):
		c.logger.Errorf("dropping invalid notification message (event_id=%q, seq=%d): %v", msg.EventID, m.Sequence, err)
	default:
		// No ack: the server redelivers after the ack wait.
		c.logger.Errorf("failed to ingest notification message (event_id=%q, seq=%d): %v", msg.EventID, m.Sequence, err)
		return
	}

	c.ack(m)
}

func (c *Consumer) ack(m *stan.Msg) {
	if err := m.Ack(); err != nil {
		c.logger.Errorf("failed to ack message (seq=%d): %v", m.Sequence, err)
	}
}

func (c *Consumer) Close() {
	if c.sub != nil {
		// Close, not Unsubscribe: the durable subscription state survives.
		if err := c.sub.Close(); err != nil {
			c.logger.Errorf("failed to close subscription: %v", err)
		}
	}
	if err := c.sc.Close(); err != nil {
		c.logger.Errorf("failed to close streaming connection: %v", err)
	}
	c.nc.Close()
}
