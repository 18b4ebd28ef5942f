package models

import "time"

// JobStatus - lifecycle of a channel batch job.
// PENDING -> PROCESSING -> {COMPLETED, FAILED, CANCELLED}
type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
	JobCancelled  JobStatus = "CANCELLED"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// VideoTask - unit of work inside a batch.
type VideoTask struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

// VideoBatch - ordered fixed-size group of tasks. Immutable once created.
type VideoBatch struct {
	Index int         `json:"index"`
	Tasks []VideoTask `json:"tasks"`
}

// VideoFilters - listing filters applied by the video-listing collaborator.
type VideoFilters struct {
	PublishedAfter  time.Time `json:"published_after,omitempty"`
	MinViews        uint64    `json:"min_views,omitempty"`
	MinDurationSecs int       `json:"min_duration_secs,omitempty"`
	MaxVideos       int       `json:"max_videos,omitempty"`
}

// FailedVideo - per-video failure entry in a job.
type FailedVideo struct {
	VideoID string `json:"video_id"`
	Error   string `json:"error"`
}

// BatchJob - progress tracking for processing every video of one channel.
// Owned exclusively by the orchestrator; external readers get copies.
type BatchJob struct {
	JobID        string       `json:"job_id"`
	ChannelID    string       `json:"channel_id"`
	ChannelTitle string       `json:"channel_title"`
	TotalVideos  int          `json:"total_videos"`
	Batches      []VideoBatch `json:"batches"`
	Filters      VideoFilters `json:"filters"`

	Status           JobStatus     `json:"status"`
	VideosCompleted  int           `json:"videos_completed"`
	VideosFailed     int           `json:"videos_failed"`
	RestaurantsFound int           `json:"restaurants_found"`
	FailedVideos     []FailedVideo `json:"failed_videos"`
	ErrorMessage     string        `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy safe to hand to external readers.
func (j *BatchJob) Clone() *BatchJob {
	cp := *j
	cp.Batches = make([]VideoBatch, len(j.Batches))
	for i, b := range j.Batches {
		tasks := make([]VideoTask, len(b.Tasks))
		copy(tasks, b.Tasks)
		cp.Batches[i] = VideoBatch{Index: b.Index, Tasks: tasks}
	}
	cp.FailedVideos = append([]FailedVideo(nil), j.FailedVideos...)
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// VideosProcessed - completed plus failed.
func (j *BatchJob) VideosProcessed() int {
	return j.VideosCompleted + j.VideosFailed
}

// JobProgress - snapshot pushed to observers after every video.
type JobProgress struct {
	JobID            string    `json:"job_id"`
	ChannelID        string    `json:"channel_id"`
	Status           JobStatus `json:"status"`
	VideosCompleted  int       `json:"videos_completed"`
	VideosFailed     int       `json:"videos_failed"`
	VideosTotal      int       `json:"videos_total"`
	Percent          float64   `json:"percent"`
	RestaurantsFound int       `json:"restaurants_found"`
	Timestamp        int64     `json:"timestamp"`
}

// ChannelSubmission - NATS payload requesting analysis of one channel.
type ChannelSubmission struct {
	ChannelRef string       `json:"channel_ref"` // URL, @handle, or raw channel id
	Filters    VideoFilters `json:"filters"`
	CreatedAt  int64        `json:"created_at"`
}
