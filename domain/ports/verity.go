package ports

import (
	"context"

	"where2eat-worker/domain/models"
)

// HallucinationDetectorPort - interface over the verity scorer. Consumed only
// through this contract: given a candidate record, return a verdict.
type HallucinationDetectorPort interface {
	Detect(ctx context.Context, record *models.Restaurant) (*models.VerityVerdict, error)
}
