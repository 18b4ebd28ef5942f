package models

import "time"

// EpisodeInfo - episode-level metadata produced alongside the records.
type EpisodeInfo struct {
	VideoID         string    `json:"video_id"`
	VideoURL        string    `json:"video_url"`
	Title           string    `json:"title"`
	Language        string    `json:"language"`
	TranscriptChars int       `json:"transcript_chars"`
	ChunkCount      int       `json:"chunk_count"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// TrendPoint - how often one cuisine/feature value appeared in an episode.
type TrendPoint struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// EpisodeTrends - lightweight per-episode tallies over the consolidated records.
type EpisodeTrends struct {
	Cuisines []TrendPoint `json:"cuisines"`
	Features []TrendPoint `json:"features"`
}

// VideoOutcome - result of running the pipeline on one video. Per-video
// failures are data, not errors: the orchestrator records them and moves on.
type VideoOutcome struct {
	VideoID     string        `json:"video_id"`
	Language    string        `json:"language"`
	Episode     EpisodeInfo   `json:"episode"`
	Restaurants []Restaurant  `json:"restaurants"`
	Trends      EpisodeTrends `json:"trends"`
	Summary     string        `json:"summary"`

	Failed        bool   `json:"failed"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// FailedOutcome builds the outcome shape for a video that could not be processed.
func FailedOutcome(videoID, language, reason string) *VideoOutcome {
	return &VideoOutcome{
		VideoID:       videoID,
		Language:      language,
		Failed:        true,
		FailureReason: reason,
	}
}
