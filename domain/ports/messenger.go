package ports

import (
	"context"

	"where2eat-worker/domain/models"
)

// ProgressPort - side channel for per-video progress updates. This is the
// only external side channel besides the job's final state.
type ProgressPort interface {
	SendProgress(ctx context.Context, update *models.JobProgress) error
}
