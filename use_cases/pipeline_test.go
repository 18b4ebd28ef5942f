package use_cases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

type stubTranscripts struct {
	doc *models.TranscriptDocument
	err error
}

func (s *stubTranscripts) FetchTranscript(_ context.Context, videoID string, _ []string) (*models.TranscriptDocument, error) {
	return s.doc, s.err
}

type stubLLM struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubLLM) Complete(_ context.Context, prompt string, _ ports.ModelConfig) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	resp := s.responses[(s.calls-1)%len(s.responses)]
	return resp, nil
}

type stubDetector struct {
	rejectName string
	err        error
}

func (s *stubDetector) Detect(_ context.Context, record *models.Restaurant) (*models.VerityVerdict, error) {
	if s.err != nil {
		return nil, s.err
	}
	if record.Name == s.rejectName {
		return &models.VerityVerdict{
			IsHallucination: true,
			Confidence:      0.9,
			Recommendation:  models.RecommendationReject,
		}, nil
	}
	return &models.VerityVerdict{
		Confidence:     0.8,
		Recommendation: models.RecommendationAccept,
	}, nil
}

type countingRepo struct {
	episodes int
	records  int
	err      error
}

func (c *countingRepo) SaveEpisode(_ context.Context, _ *models.EpisodeInfo, records []models.Restaurant) error {
	if c.err != nil {
		return c.err
	}
	c.episodes++
	c.records += len(records)
	return nil
}

func hebrewDoc(text string) *models.TranscriptDocument {
	return &models.TranscriptDocument{
		SourceID:    "vid-1",
		LanguageTag: "he",
		FullText:    text,
	}
}

func pipelineUnderTest(llm ports.LLMPort, tr ports.TranscriptFetcherPort, det ports.HallucinationDetectorPort, repo ports.RestaurantRepositoryPort) *VideoPipeline {
	return NewVideoPipeline(llm, tr, det, repo, PipelineConfig{
		ChunkSize:    25000,
		ChunkOverlap: 1000,
		Languages:    []string{"he", "en"},
		Model:        ports.ModelConfig{Model: "gemini-1.5-flash"},
	})
}

func TestPipelineHappyPath(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`[{"name": "חומוס אליהו", "cuisine": "hummus", "sentiment": "positive"},
		  {"name": "צ'קולי", "cuisine": "basque", "special_features": ["wine bar"]}]`,
	}}
	repo := &countingRepo{}
	p := pipelineUnderTest(llm, &stubTranscripts{doc: hebrewDoc("ביקרנו בחומוס אליהו ובצ'קולי.")}, nil, repo)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1", Title: "פרק 12"})

	if out.Failed {
		t.Fatalf("unexpected failure: %s", out.FailureReason)
	}
	if len(out.Restaurants) != 2 {
		t.Fatalf("got %d restaurants, want 2", len(out.Restaurants))
	}
	if out.Language != "he" {
		t.Errorf("language = %q, want he", out.Language)
	}
	if out.Episode.ChunkCount != 1 || out.Episode.VideoID != "vid-1" {
		t.Errorf("episode metadata wrong: %+v", out.Episode)
	}
	if len(out.Trends.Cuisines) != 2 {
		t.Errorf("cuisine trends = %+v", out.Trends.Cuisines)
	}
	if repo.episodes != 1 || repo.records != 2 {
		t.Errorf("repository got %d episodes / %d records", repo.episodes, repo.records)
	}
	if llm.calls != 1 {
		t.Errorf("llm called %d times, want 1", llm.calls)
	}
}

func TestPipelineChunkedTranscriptConsolidates(t *testing.T) {
	// Two chunks both mention the same place; the outcome carries it once.
	llm := &stubLLM{responses: []string{
		`[{"name": "צ'קולי", "cuisine": "basque"}]`,
		`[{"name": "צ'קולי", "menu_items": ["pintxos"]}]`,
	}}
	text := strings.Repeat("משפט על צ'קולי. ", 40) // forces two chunks at size 300
	p := NewVideoPipeline(llm, &stubTranscripts{doc: hebrewDoc(text)}, nil, nil, PipelineConfig{
		ChunkSize:    300,
		ChunkOverlap: 30,
		Languages:    []string{"he"},
	})

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if out.Failed {
		t.Fatalf("unexpected failure: %s", out.FailureReason)
	}
	if llm.calls < 2 {
		t.Fatalf("expected one llm call per chunk, got %d", llm.calls)
	}
	if len(out.Restaurants) != 1 {
		t.Fatalf("duplicate mention must consolidate to 1 record, got %d", len(out.Restaurants))
	}
	rec := out.Restaurants[0]
	if rec.Cuisine != "basque" || len(rec.MenuItems) != 1 {
		t.Errorf("merge lost fields: %+v", rec)
	}
	// Later chunks announce their window to the model.
	if !strings.Contains(llm.prompts[1], "part 2 of") {
		t.Error("chunked prompt must carry its part label")
	}
}

func TestPipelineNoTranscript(t *testing.T) {
	p := pipelineUnderTest(&stubLLM{}, &stubTranscripts{doc: nil}, nil, nil)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if !out.Failed {
		t.Fatal("missing transcript must fail the video")
	}
	if !strings.Contains(out.FailureReason, "transcript") {
		t.Errorf("reason = %q", out.FailureReason)
	}
}

func TestPipelineTranscriptFetchError(t *testing.T) {
	p := pipelineUnderTest(&stubLLM{}, &stubTranscripts{err: errors.New("service down")}, nil, nil)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if !out.Failed {
		t.Fatal("fetch error must fail the video")
	}
	if !strings.Contains(out.FailureReason, "service down") {
		t.Errorf("reason = %q", out.FailureReason)
	}
}

func TestPipelineExtractionError(t *testing.T) {
	llm := &stubLLM{err: errors.New("rate limited")}
	p := pipelineUnderTest(llm, &stubTranscripts{doc: hebrewDoc("טקסט")}, nil, nil)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if !out.Failed {
		t.Fatal("llm error must fail the video")
	}
	if !strings.Contains(out.FailureReason, "rate limited") {
		t.Errorf("reason = %q", out.FailureReason)
	}
}

func TestPipelineGarbageResponseYieldsEmptyOutcome(t *testing.T) {
	llm := &stubLLM{responses: []string{"I could not find any restaurants, sorry!"}}
	p := pipelineUnderTest(llm, &stubTranscripts{doc: hebrewDoc("טקסט בלי מסעדות")}, nil, nil)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if out.Failed {
		t.Fatalf("unparseable response is an empty result, not a failure: %s", out.FailureReason)
	}
	if len(out.Restaurants) != 0 {
		t.Errorf("got %d restaurants, want 0", len(out.Restaurants))
	}
}

func TestPipelineDetectorRejectsHallucination(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`[{"name": "אמיתית"}, {"name": "מומצאת"}]`,
	}}
	det := &stubDetector{rejectName: "מומצאת"}
	p := pipelineUnderTest(llm, &stubTranscripts{doc: hebrewDoc("טקסט")}, det, nil)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if len(out.Restaurants) != 1 {
		t.Fatalf("got %d restaurants, want 1 after rejection", len(out.Restaurants))
	}
	if out.Restaurants[0].Name != "אמיתית" {
		t.Errorf("kept the wrong record: %q", out.Restaurants[0].Name)
	}
	if out.Restaurants[0].Verity == nil || out.Restaurants[0].Verity.Recommendation != models.RecommendationAccept {
		t.Error("kept record must carry its verdict")
	}
}

func TestPipelineDetectorErrorKeepsRecordUnverified(t *testing.T) {
	llm := &stubLLM{responses: []string{`[{"name": "הסלון"}]`}}
	det := &stubDetector{err: errors.New("verity down")}
	p := pipelineUnderTest(llm, &stubTranscripts{doc: hebrewDoc("טקסט")}, det, nil)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if len(out.Restaurants) != 1 {
		t.Fatalf("detector outage must not drop records, got %d", len(out.Restaurants))
	}
	if out.Restaurants[0].Verity != nil {
		t.Error("record must stay unverified when the detector is down")
	}
}

func TestPipelineRepositoryFailureIsNonFatal(t *testing.T) {
	llm := &stubLLM{responses: []string{`[{"name": "שגב"}]`}}
	repo := &countingRepo{err: errors.New("db down")}
	p := pipelineUnderTest(llm, &stubTranscripts{doc: hebrewDoc("טקסט")}, nil, repo)

	out := p.Process(context.Background(), models.VideoTask{VideoID: "vid-1"})

	if out.Failed {
		t.Errorf("storage outage must not fail the video: %s", out.FailureReason)
	}
	if len(out.Restaurants) != 1 {
		t.Errorf("got %d restaurants, want 1", len(out.Restaurants))
	}
}
