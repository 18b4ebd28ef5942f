package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

// VerityClient - HTTP client for the hallucination-detection service.
// POST {base}/detect with the candidate record, returns the verdict.
type VerityClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewVerityClient(baseURL string) *VerityClient {
	return &VerityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default().With("component", "verity_client"),
	}
}

func (c *VerityClient) Detect(ctx context.Context, record *models.Restaurant) (*models.VerityVerdict, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verity service returned %d", resp.StatusCode)
	}

	var verdict models.VerityVerdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode verdict: %w", err)
	}
	return &verdict, nil
}

var _ ports.HallucinationDetectorPort = (*VerityClient)(nil)

// NoopDetector accepts every record. Used when no verity service is
// configured.
type NoopDetector struct{}

func (NoopDetector) Detect(_ context.Context, _ *models.Restaurant) (*models.VerityVerdict, error) {
	return &models.VerityVerdict{
		IsHallucination: false,
		Confidence:      0,
		Recommendation:  models.RecommendationAccept,
	}, nil
}

var _ ports.HallucinationDetectorPort = NoopDetector{}
