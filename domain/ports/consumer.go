package ports

import (
	"context"

	"where2eat-worker/domain/models"
)

// SubmissionHandler - function signature for handling one channel submission.
type SubmissionHandler func(ctx context.Context, sub *models.ChannelSubmission) error

// ConsumerPort - interface over the job submission queue.
type ConsumerPort interface {
	// Start begins consuming submissions (blocking until ctx is cancelled).
	Start(ctx context.Context) error

	// Stop drains in-flight handlers (graceful).
	Stop()

	// SetHandler wires the submission handler.
	SetHandler(handler SubmissionHandler)
}
