package models

import (
	"errors"
	"fmt"
)

// Submission-time errors. These are raised synchronously to the caller of
// Submit; everything that happens after admission is recorded on the job.
var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrConcurrencyLimit = errors.New("concurrent job limit reached")
	ErrDuplicateChannel = errors.New("channel already has an active job")
)

// ErrTranscriptUnavailable - the transcript service has no transcript for
// the video. Handled per-video, never aborts a batch.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// ExtractionError - the LLM backend call failed (network, provider, quota).
// Not retried locally; the pipeline converts it into a failed VideoOutcome.
type ExtractionError struct {
	Provider string // "gemini", "openai"
	Stage    string // "complete", "parse"
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction backend failure (%s/%s): %v", e.Provider, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
