package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"where2eat-worker/domain/models"
)

func TestTranscriptFetcherFetchesDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcript" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("video_id"); got != "vid-1" {
			t.Errorf("video_id = %q", got)
		}
		if got := r.URL.Query().Get("languages"); got != "he,en" {
			t.Errorf("languages = %q", got)
		}
		json.NewEncoder(w).Encode(models.TranscriptDocument{
			SourceID:    "vid-1",
			LanguageTag: "he",
			FullText:    "ביקרנו במסעדה.",
		})
	}))
	defer server.Close()

	f := NewTranscriptFetcher(server.URL, nil)
	doc, err := f.FetchTranscript(context.Background(), "vid-1", []string{"he", "en"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc == nil || doc.LanguageTag != "he" || doc.FullText == "" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestTranscriptFetcherFillsMissingSourceID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(models.TranscriptDocument{FullText: "טקסט"})
	}))
	defer server.Close()

	f := NewTranscriptFetcher(server.URL, nil)
	doc, err := f.FetchTranscript(context.Background(), "vid-7", nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.SourceID != "vid-7" {
		t.Errorf("source id = %q, want vid-7", doc.SourceID)
	}
}

func TestTranscriptFetcherNotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewTranscriptFetcher(server.URL, nil)
	doc, err := f.FetchTranscript(context.Background(), "vid-1", nil)
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if doc != nil {
		t.Errorf("404 must yield a nil document, got %+v", doc)
	}
}

func TestTranscriptFetcherServerErrorIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewTranscriptFetcher(server.URL, nil)
	if _, err := f.FetchTranscript(context.Background(), "vid-1", nil); err == nil {
		t.Error("500 must surface as an error")
	}
}

func TestVerityClientDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rec models.Restaurant
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Errorf("decode record: %v", err)
		}
		json.NewEncoder(w).Encode(models.VerityVerdict{
			Confidence:     0.7,
			Recommendation: models.RecommendationReview,
		})
	}))
	defer server.Close()

	c := NewVerityClient(server.URL)
	verdict, err := c.Detect(context.Background(), &models.Restaurant{Name: "צ'קולי"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if verdict.Recommendation != models.RecommendationReview {
		t.Errorf("recommendation = %q", verdict.Recommendation)
	}
}

func TestNoopDetectorAcceptsEverything(t *testing.T) {
	verdict, err := NoopDetector{}.Detect(context.Background(), &models.Restaurant{Name: "x"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if verdict.Recommendation != models.RecommendationAccept || verdict.IsHallucination {
		t.Errorf("unexpected verdict: %+v", verdict)
	}
}
