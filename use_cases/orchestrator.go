package use_cases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// OrchestratorConfig - admission and scheduling knobs.
type OrchestratorConfig struct {
	MaxConcurrentJobs      int
	BatchSize              int
	DefaultMinutesPerVideo float64 // ETA fallback before any job has completed
}

// ProgressObserver - optional in-process callback invoked after every video.
type ProgressObserver func(models.JobProgress)

// Orchestrator owns the lifecycle of channel batch jobs. It is the single
// writer of every BatchJob: all mutation happens under one mutex and
// external readers only ever receive deep copies.
type Orchestrator struct {
	pipeline VideoProcessor
	listing  ports.VideoListingPort
	store    ports.JobStorePort   // optional
	progress ports.ProgressPort   // optional
	observer ProgressObserver     // optional
	cfg      OrchestratorConfig
	logger   *slog.Logger

	mu        sync.Mutex
	active    map[string]*models.BatchJob // keyed by job id, non-terminal only
	byChannel map[string]string           // channel id -> active job id
	completed map[string]*models.BatchJob

	wg sync.WaitGroup
}

func NewOrchestrator(
	pipeline VideoProcessor,
	listing ports.VideoListingPort,
	store ports.JobStorePort,
	progress ports.ProgressPort,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 3
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.DefaultMinutesPerVideo <= 0 {
		cfg.DefaultMinutesPerVideo = 2
	}
	return &Orchestrator{
		pipeline:  pipeline,
		listing:   listing,
		store:     store,
		progress:  progress,
		cfg:       cfg,
		logger:    slog.Default().With("component", "orchestrator"),
		active:    make(map[string]*models.BatchJob),
		byChannel: make(map[string]string),
		completed: make(map[string]*models.BatchJob),
	}
}

// SetObserver registers the in-process progress callback. Must be called
// before the first Submit.
func (o *Orchestrator) SetObserver(fn ProgressObserver) {
	o.observer = fn
}

// Submit admits one channel for processing. Resolution, listing and
// batching happen up front; admission control (concurrency ceiling and
// per-channel duplicate guard) is atomic against the active-job set.
// Returns a snapshot of the created job.
func (o *Orchestrator) Submit(ctx context.Context, channelRef string, filters models.VideoFilters) (*models.BatchJob, error) {
	info, err := o.listing.ResolveChannel(ctx, channelRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", models.ErrChannelNotFound, channelRef, err)
	}

	tasks, err := o.listing.ListVideos(ctx, info.ChannelID, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", models.ErrChannelNotFound, info.ChannelID, err)
	}

	job := &models.BatchJob{
		JobID:        uuid.NewString(),
		ChannelID:    info.ChannelID,
		ChannelTitle: info.Title,
		TotalVideos:  len(tasks),
		Batches:      SplitIntoBatches(tasks, o.cfg.BatchSize),
		Filters:      filters,
		Status:       models.JobPending,
		CreatedAt:    time.Now(),
	}

	o.mu.Lock()
	if len(o.active) >= o.cfg.MaxConcurrentJobs {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %d jobs active", models.ErrConcurrencyLimit, o.cfg.MaxConcurrentJobs)
	}
	if activeID, ok := o.byChannel[info.ChannelID]; ok {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %s (job %s)", models.ErrDuplicateChannel, info.ChannelID, activeID)
	}
	o.active[job.JobID] = job
	o.byChannel[info.ChannelID] = job.JobID
	snapshot := job.Clone()
	o.mu.Unlock()

	o.persist(job.JobID)
	o.logger.InfoContext(ctx, "job admitted",
		"job_id", job.JobID,
		"channel_id", info.ChannelID,
		"channel_title", info.Title,
		"total_videos", len(tasks),
		"batches", len(job.Batches),
	)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		// The job outlives the submission call; cancellation is cooperative
		// through Cancel, not through the submitter's context.
		o.runJob(context.Background(), job.JobID)
	}()

	return snapshot, nil
}

// Cancel moves a non-terminal job straight to CANCELLED. In-flight per-video
// work is not interrupted; the worker notices at the next video boundary.
func (o *Orchestrator) Cancel(jobID string) error {
	o.mu.Lock()
	job, ok := o.active[jobID]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("job %s not found or already terminal", jobID)
	}
	o.finalizeLocked(job, models.JobCancelled, "")
	o.mu.Unlock()

	o.persist(jobID)
	o.logger.Info("job cancelled", "job_id", jobID)
	return nil
}

// Job returns a snapshot of one job, active or completed.
func (o *Orchestrator) Job(jobID string) (*models.BatchJob, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.active[jobID]; ok {
		return job.Clone(), true
	}
	if job, ok := o.completed[jobID]; ok {
		return job.Clone(), true
	}
	return nil, false
}

// ActiveJobs returns snapshots of every non-terminal job.
func (o *Orchestrator) ActiveJobs() []*models.BatchJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.BatchJob, 0, len(o.active))
	for _, job := range o.active {
		out = append(out, job.Clone())
	}
	return out
}

// CompletedJobs returns snapshots of every terminal job.
func (o *Orchestrator) CompletedJobs() []*models.BatchJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.BatchJob, 0, len(o.completed))
	for _, job := range o.completed {
		out = append(out, job.Clone())
	}
	return out
}

// Wait blocks until every admitted job has reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// ─────────────────────────────────────────────────────────────────────────────
// Execution
// ─────────────────────────────────────────────────────────────────────────────

func (o *Orchestrator) runJob(ctx context.Context, jobID string) {
	o.mu.Lock()
	job, ok := o.active[jobID]
	if !ok || job.Status != models.JobPending {
		o.mu.Unlock()
		return
	}
	now := time.Now()
	job.Status = models.JobProcessing
	job.StartedAt = &now
	batches := job.Batches
	o.mu.Unlock()

	o.persist(jobID)

	defer func() {
		if r := recover(); r != nil {
			o.mu.Lock()
			if job, ok := o.active[jobID]; ok {
				o.finalizeLocked(job, models.JobFailed, fmt.Sprintf("worker panic: %v", r))
			}
			o.mu.Unlock()
			o.persist(jobID)
			o.logger.Error("job worker panicked", "job_id", jobID, "panic", fmt.Sprint(r))
		}
	}()

	for _, batch := range batches {
		if o.isTerminal(jobID) {
			break
		}
		o.runBatch(ctx, jobID, batch)
	}

	o.mu.Lock()
	if job, ok := o.active[jobID]; ok {
		// A job that processed every video is COMPLETED even when every
		// video failed; total failure is visible in the counters.
		o.finalizeLocked(job, models.JobCompleted, "")
	}
	o.mu.Unlock()

	o.persist(jobID)
	o.publishProgress(ctx, jobID)

	if job, ok := o.Job(jobID); ok {
		o.logger.Info("job finished",
			"job_id", jobID,
			"status", string(job.Status),
			"videos_completed", job.VideosCompleted,
			"videos_failed", job.VideosFailed,
			"restaurants_found", job.RestaurantsFound,
		)
	}
}

// runBatch processes one batch sequentially. A batch-level panic marks every
// unprocessed video in the batch as failed so progress accounting never
// silently loses videos.
func (o *Orchestrator) runBatch(ctx context.Context, jobID string, batch models.VideoBatch) {
	processed := make(map[string]bool, len(batch.Tasks))

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		batchErr := fmt.Sprintf("batch %d crashed: %v", batch.Index, r)
		o.logger.Error("batch crashed", "job_id", jobID, "batch", batch.Index, "panic", batchErr)
		o.mu.Lock()
		if job, ok := o.active[jobID]; ok {
			for _, task := range batch.Tasks {
				if !processed[task.VideoID] {
					job.VideosFailed++
					job.FailedVideos = append(job.FailedVideos, models.FailedVideo{
						VideoID: task.VideoID,
						Error:   batchErr,
					})
				}
			}
		}
		o.mu.Unlock()
		o.persist(jobID)
	}()

	for _, task := range batch.Tasks {
		// Cooperative cancellation: checked only between videos.
		if o.isTerminal(jobID) {
			return
		}

		outcome := o.pipeline.Process(ctx, task)
		processed[task.VideoID] = true

		o.mu.Lock()
		if job, ok := o.active[jobID]; ok {
			if outcome.Failed {
				job.VideosFailed++
				job.FailedVideos = append(job.FailedVideos, models.FailedVideo{
					VideoID: task.VideoID,
					Error:   outcome.FailureReason,
				})
			} else {
				job.VideosCompleted++
				job.RestaurantsFound += len(outcome.Restaurants)
			}
		}
		o.mu.Unlock()

		o.persist(jobID)
		o.publishProgress(ctx, jobID)
	}
}

// finalizeLocked stamps a terminal status and moves the job from the active
// to the completed collection. Caller holds o.mu.
func (o *Orchestrator) finalizeLocked(job *models.BatchJob, status models.JobStatus, errMsg string) {
	now := time.Now()
	job.Status = status
	job.CompletedAt = &now
	if errMsg != "" {
		job.ErrorMessage = errMsg
	}
	delete(o.active, job.JobID)
	if o.byChannel[job.ChannelID] == job.JobID {
		delete(o.byChannel, job.ChannelID)
	}
	o.completed[job.JobID] = job
}

func (o *Orchestrator) isTerminal(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, activeOK := o.active[jobID]
	return !activeOK
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress & ETA
// ─────────────────────────────────────────────────────────────────────────────

func (o *Orchestrator) publishProgress(ctx context.Context, jobID string) {
	o.mu.Lock()
	job, ok := o.active[jobID]
	if !ok {
		job, ok = o.completed[jobID]
	}
	if !ok {
		o.mu.Unlock()
		return
	}
	update := models.JobProgress{
		JobID:            job.JobID,
		ChannelID:        job.ChannelID,
		Status:           job.Status,
		VideosCompleted:  job.VideosCompleted,
		VideosFailed:     job.VideosFailed,
		VideosTotal:      job.TotalVideos,
		RestaurantsFound: job.RestaurantsFound,
		Timestamp:        time.Now().Unix(),
	}
	if job.TotalVideos > 0 {
		update.Percent = float64(job.VideosProcessed()) / float64(job.TotalVideos) * 100
	}
	o.mu.Unlock()

	if o.progress != nil {
		if err := o.progress.SendProgress(ctx, &update); err != nil {
			o.logger.WarnContext(ctx, "failed to send progress", "job_id", jobID, "error", err)
		}
	}
	if o.observer != nil {
		o.observer(update)
	}
}

// EstimateCompletion projects when a job will finish. A processing job
// extrapolates its own pace; otherwise the historical average over completed
// jobs applies, falling back to the configured default minutes per video.
func (o *Orchestrator) EstimateCompletion(jobID string) (time.Time, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.active[jobID]
	if !ok {
		if done, isDone := o.completed[jobID]; isDone && done.CompletedAt != nil {
			return *done.CompletedAt, nil
		}
		return time.Time{}, fmt.Errorf("job %s not found", jobID)
	}

	remaining := job.TotalVideos - job.VideosProcessed()
	if remaining <= 0 {
		return time.Now(), nil
	}

	perVideo := o.perVideoEstimateLocked(job)
	return time.Now().Add(time.Duration(remaining) * perVideo), nil
}

// EstimateForVideoCount projects wall time for a not-yet-submitted channel.
func (o *Orchestrator) EstimateForVideoCount(videos int) time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return time.Duration(videos) * o.historicalPerVideoLocked()
}

func (o *Orchestrator) perVideoEstimateLocked(job *models.BatchJob) time.Duration {
	if job.Status == models.JobProcessing && job.StartedAt != nil && job.VideosProcessed() > 0 {
		elapsed := time.Since(*job.StartedAt)
		return elapsed / time.Duration(job.VideosProcessed())
	}
	return o.historicalPerVideoLocked()
}

func (o *Orchestrator) historicalPerVideoLocked() time.Duration {
	var total time.Duration
	var videos int
	for _, job := range o.completed {
		if job.StartedAt == nil || job.CompletedAt == nil || job.VideosProcessed() == 0 {
			continue
		}
		total += job.CompletedAt.Sub(*job.StartedAt)
		videos += job.VideosProcessed()
	}
	if videos > 0 {
		return total / time.Duration(videos)
	}
	return time.Duration(o.cfg.DefaultMinutesPerVideo * float64(time.Minute))
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────────────────

// persist writes the current snapshot of a job, best effort.
func (o *Orchestrator) persist(jobID string) {
	if o.store == nil {
		return
	}
	snapshot, ok := o.Job(jobID)
	if !ok {
		return
	}
	if err := o.store.SaveJob(context.Background(), snapshot); err != nil {
		o.logger.Warn("job snapshot save failed (non-critical)", "job_id", jobID, "error", err)
	}
}

// Restore loads persisted jobs after a restart. Terminal jobs come back
// as-is; jobs that were mid-flight are marked FAILED with their counters
// preserved, so accounting survives the restart even though execution
// does not.
func (o *Orchestrator) Restore(ctx context.Context) error {
	if o.store == nil {
		return nil
	}
	jobs, err := o.store.LoadJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted jobs: %w", err)
	}

	var interrupted []string
	o.mu.Lock()
	for _, job := range jobs {
		if !job.Status.Terminal() {
			now := time.Now()
			job.Status = models.JobFailed
			job.ErrorMessage = "worker restarted before job completed"
			job.CompletedAt = &now
			interrupted = append(interrupted, job.JobID)
		}
		o.completed[job.JobID] = job
	}
	o.mu.Unlock()

	for _, id := range interrupted {
		o.persist(id)
	}
	o.logger.InfoContext(ctx, "jobs restored",
		"total", len(jobs),
		"interrupted", len(interrupted),
	)
	return nil
}
