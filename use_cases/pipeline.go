package use_cases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// VideoProcessor - what the orchestrator needs from the per-video pipeline.
type VideoProcessor interface {
	Process(ctx context.Context, task models.VideoTask) *models.VideoOutcome
}

// PipelineConfig - knobs for the single-video pipeline.
type PipelineConfig struct {
	ChunkSize    int      // target chunk size in runes
	ChunkOverlap int      // shared context between adjoining chunks
	Languages    []string // transcript language preference, e.g. ["he", "iw", "en"]
	Model        ports.ModelConfig
}

// VideoPipeline composes chunking, extraction, repair parsing and
// consolidation for one transcript. It is state-free: all state lives in
// the arguments and the returned outcome.
type VideoPipeline struct {
	llm         ports.LLMPort
	transcripts ports.TranscriptFetcherPort
	detector    ports.HallucinationDetectorPort
	repository  ports.RestaurantRepositoryPort
	cfg         PipelineConfig
	logger      *slog.Logger
}

func NewVideoPipeline(
	llm ports.LLMPort,
	transcripts ports.TranscriptFetcherPort,
	detector ports.HallucinationDetectorPort,
	repository ports.RestaurantRepositoryPort,
	cfg PipelineConfig,
) *VideoPipeline {
	return &VideoPipeline{
		llm:         llm,
		transcripts: transcripts,
		detector:    detector,
		repository:  repository,
		cfg:         cfg,
		logger:      slog.Default().With("component", "video_pipeline"),
	}
}

// Process runs the full pipeline for one video. It never returns an error:
// failures become a failed outcome that the orchestrator records against
// the job without aborting the batch.
func (p *VideoPipeline) Process(ctx context.Context, task models.VideoTask) *models.VideoOutcome {
	doc, err := p.transcripts.FetchTranscript(ctx, task.VideoID, p.cfg.Languages)
	if err != nil {
		p.logger.WarnContext(ctx, "transcript fetch failed",
			"video_id", task.VideoID,
			"error", err,
		)
		return models.FailedOutcome(task.VideoID, "", fmt.Sprintf("transcript fetch: %v", err))
	}
	if doc == nil {
		return models.FailedOutcome(task.VideoID, "", models.ErrTranscriptUnavailable.Error())
	}

	chunks := SplitTranscript(doc.FullText, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	p.logger.InfoContext(ctx, "transcript loaded",
		"video_id", task.VideoID,
		"language", doc.LanguageTag,
		"chars", len([]rune(doc.FullText)),
		"chunks", len(chunks),
	)

	var candidates []models.Restaurant
	for _, chunk := range chunks {
		prompt := BuildExtractionPrompt(chunk.Text, doc.LanguageTag, chunk.Index, len(chunks))
		raw, err := p.llm.Complete(ctx, prompt, p.cfg.Model)
		if err != nil {
			extErr := &models.ExtractionError{Provider: p.cfg.Model.Model, Stage: "complete", Err: err}
			p.logger.WarnContext(ctx, "extraction failed",
				"video_id", task.VideoID,
				"chunk", chunk.Index,
				"error", err,
			)
			return models.FailedOutcome(task.VideoID, doc.LanguageTag, extErr.Error())
		}
		candidates = append(candidates, ParseExtractionResponse(raw)...)
	}

	records := ConsolidateRecords(candidates)
	records = p.screenRecords(ctx, task.VideoID, records)

	episode := models.EpisodeInfo{
		VideoID:         task.VideoID,
		VideoURL:        task.VideoURL,
		Title:           task.Title,
		Language:        doc.LanguageTag,
		TranscriptChars: len([]rune(doc.FullText)),
		ChunkCount:      len(chunks),
		ProcessedAt:     time.Now(),
	}

	outcome := &models.VideoOutcome{
		VideoID:     task.VideoID,
		Language:    doc.LanguageTag,
		Episode:     episode,
		Restaurants: records,
		Trends:      tallyTrends(records),
		Summary: fmt.Sprintf("%d restaurants extracted from %d candidates across %d chunks",
			len(records), len(candidates), len(chunks)),
	}

	if p.repository != nil {
		if err := p.repository.SaveEpisode(ctx, &episode, records); err != nil {
			p.logger.WarnContext(ctx, "episode save failed (non-critical)",
				"video_id", task.VideoID,
				"error", err,
			)
		}
	}

	return outcome
}

// screenRecords runs every consolidated record through the hallucination
// detector. Rejects are dropped, reviews stay flagged, detector failures
// leave the record unverified.
func (p *VideoPipeline) screenRecords(ctx context.Context, videoID string, records []models.Restaurant) []models.Restaurant {
	if p.detector == nil {
		return records
	}
	kept := records[:0]
	for i := range records {
		verdict, err := p.detector.Detect(ctx, &records[i])
		if err != nil {
			p.logger.WarnContext(ctx, "verity check failed, keeping record unverified",
				"video_id", videoID,
				"name", records[i].Name,
				"error", err,
			)
			kept = append(kept, records[i])
			continue
		}
		if verdict.Recommendation == models.RecommendationReject {
			p.logger.InfoContext(ctx, "record rejected as hallucination",
				"video_id", videoID,
				"name", records[i].Name,
				"confidence", verdict.Confidence,
			)
			continue
		}
		records[i].Verity = verdict
		kept = append(kept, records[i])
	}
	return kept
}

func tallyTrends(records []models.Restaurant) models.EpisodeTrends {
	return models.EpisodeTrends{
		Cuisines: tally(records, func(r *models.Restaurant) []string {
			if isPlaceholder(r.Cuisine) {
				return nil
			}
			return []string{r.Cuisine}
		}),
		Features: tally(records, func(r *models.Restaurant) []string { return r.SpecialFeatures }),
	}
}

func tally(records []models.Restaurant, values func(*models.Restaurant) []string) []models.TrendPoint {
	counts := make(map[string]int)
	var order []string
	for i := range records {
		for _, v := range values(&records[i]) {
			key := normalizeTrendKey(v)
			if key == "" {
				continue
			}
			if counts[key] == 0 {
				order = append(order, key)
			}
			counts[key]++
		}
	}
	points := make([]models.TrendPoint, 0, len(order))
	for _, key := range order {
		points = append(points, models.TrendPoint{Value: key, Count: counts[key]})
	}
	return points
}

func normalizeTrendKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if isPlaceholder(s) {
		return ""
	}
	return s
}
