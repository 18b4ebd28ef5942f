package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// NATSPublisher publishes job progress to analysis.progress.{job_id}.
type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{
		nc:     nc,
		logger: slog.Default().With("component", "nats_publisher"),
	}
}

func (p *NATSPublisher) SendProgress(ctx context.Context, update *models.JobProgress) error {
	subject := fmt.Sprintf("analysis.progress.%s", update.JobID)

	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal progress update: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish progress: %w", err)
	}

	p.logger.DebugContext(ctx, "progress sent",
		"job_id", update.JobID,
		"status", string(update.Status),
		"percent", update.Percent,
	)
	return nil
}

var _ ports.ProgressPort = (*NATSPublisher)(nil)
