package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// NATSConsumer - JetStream work-queue consumer for channel submissions.
type NATSConsumer struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	handler ports.SubmissionHandler
	logger  *slog.Logger

	wg     sync.WaitGroup
	config NATSConsumerConfig
}

type NATSConsumerConfig struct {
	URL          string
	Stream       string
	Subject      string
	ConsumerName string
}

func NewNATSConsumer(cfg NATSConsumerConfig) (*NATSConsumer, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSConsumer{
		nc:     nc,
		js:     js,
		config: cfg,
		logger: slog.Default().With("component", "nats_consumer"),
	}, nil
}

func (c *NATSConsumer) SetHandler(handler ports.SubmissionHandler) {
	c.handler = handler
}

func (c *NATSConsumer) Start(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("handler not set")
	}

	stream, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      c.config.Stream,
		Subjects:  []string{c.config.Subject},
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          c.config.ConsumerName,
		Durable:       c.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    5,
		AckWait:       2 * time.Minute,
		FilterSubject: c.config.Subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	c.logger.Info("consumer started",
		"stream", c.config.Stream,
		"consumer", c.config.ConsumerName,
	)

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.processMessage(ctx, msg)
		}()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	defer consumeCtx.Stop()

	<-ctx.Done()
	c.logger.Info("context cancelled, stopping consumer")
	c.wg.Wait()
	return nil
}

func (c *NATSConsumer) processMessage(ctx context.Context, msg jetstream.Msg) {
	var sub models.ChannelSubmission
	if err := json.Unmarshal(msg.Data(), &sub); err != nil {
		c.logger.Error("failed to unmarshal submission", "error", err)
		msg.Term() // malformed payload, retrying cannot help
		return
	}

	c.logger.Info("channel submission received", "channel_ref", sub.ChannelRef)

	err := c.handler(ctx, &sub)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, models.ErrConcurrencyLimit):
		// A slot may free up; let JetStream redeliver later.
		c.logger.Warn("submission deferred", "channel_ref", sub.ChannelRef, "error", err)
		msg.NakWithDelay(30 * time.Second)
	case errors.Is(err, models.ErrDuplicateChannel), errors.Is(err, models.ErrChannelNotFound):
		c.logger.Warn("submission rejected", "channel_ref", sub.ChannelRef, "error", err)
		msg.Term()
	default:
		c.logger.Error("submission failed", "channel_ref", sub.ChannelRef, "error", err)
		msg.Nak()
	}
}

func (c *NATSConsumer) Stop() {
	c.wg.Wait()
	if c.nc != nil {
		c.nc.Close()
	}
	c.logger.Info("consumer stopped")
}

var _ ports.ConsumerPort = (*NATSConsumer)(nil)
