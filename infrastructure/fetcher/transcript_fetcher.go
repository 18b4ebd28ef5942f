package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// TranscriptFetcher - HTTP client for the transcript service.
// GET {base}/transcript?video_id=...&languages=he,iw,en
// 404 means the video simply has no transcript; that is not an error here.
type TranscriptFetcher struct {
	baseURL string
	client  *http.Client
	limiter *MinIntervalLimiter
	logger  *slog.Logger
}

func NewTranscriptFetcher(baseURL string, limiter *MinIntervalLimiter) *TranscriptFetcher {
	return &TranscriptFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: limiter,
		logger:  slog.Default().With("component", "transcript_fetcher"),
	}
}

func (f *TranscriptFetcher) FetchTranscript(ctx context.Context, videoID string, languages []string) (*models.TranscriptDocument, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := fmt.Sprintf("%s/transcript?%s", f.baseURL, url.Values{
		"video_id":  {videoID},
		"languages": {strings.Join(languages, ",")},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcript request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		f.logger.InfoContext(ctx, "no transcript available", "video_id", videoID)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript service returned %d for %s", resp.StatusCode, videoID)
	}

	var doc models.TranscriptDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	if doc.SourceID == "" {
		doc.SourceID = videoID
	}

	f.logger.InfoContext(ctx, "transcript fetched",
		"video_id", videoID,
		"language", doc.LanguageTag,
		"chars", len(doc.FullText),
	)
	return &doc, nil
}

var _ ports.TranscriptFetcherPort = (*TranscriptFetcher)(nil)
