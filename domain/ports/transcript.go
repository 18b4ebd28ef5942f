package ports

import (
	"context"

	"where2eat-worker/domain/models"
)

// TranscriptFetcherPort - interface over the transcript service.
// Returns (nil, nil) when no transcript exists for the video in any of the
// preferred languages. Safe to call repeatedly for the same video.
type TranscriptFetcherPort interface {
	FetchTranscript(ctx context.Context, videoID string, languages []string) (*models.TranscriptDocument, error)
}
