package ports

import (
	"context"

	"where2eat-worker/domain/models"
)

// RestaurantRepositoryPort - durable storage for consolidated records plus
// episode metadata.
type RestaurantRepositoryPort interface {
	SaveEpisode(ctx context.Context, episode *models.EpisodeInfo, records []models.Restaurant) error
}

// JobStorePort - best-effort persistence of job snapshots keyed by job id,
// so a process restart does not lose progress accounting.
type JobStorePort interface {
	SaveJob(ctx context.Context, job *models.BatchJob) error
	LoadJobs(ctx context.Context) ([]*models.BatchJob, error)
}
