package messenger

import (
	"context"
	"log/slog"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// NoopMessenger logs progress instead of publishing it. Used when no NATS
// connection is configured and in tests.
type NoopMessenger struct {
	logger *slog.Logger
}

func NewNoopMessenger() *NoopMessenger {
	return &NoopMessenger{
		logger: slog.Default().With("component", "noop_messenger"),
	}
}

func (m *NoopMessenger) SendProgress(ctx context.Context, update *models.JobProgress) error {
	m.logger.InfoContext(ctx, "progress (noop)",
		"job_id", update.JobID,
		"status", string(update.Status),
		"completed", update.VideosCompleted,
		"failed", update.VideosFailed,
		"total", update.VideosTotal,
	)
	return nil
}

var _ ports.ProgressPort = (*NoopMessenger)(nil)
