package models

// TranscriptDocument - full transcript of one video, as returned by the
// transcript service. Immutable input to the extraction pipeline.
type TranscriptDocument struct {
	SourceID    string `json:"source_id"`  // video id
	SourceURL   string `json:"source_url"`
	LanguageTag string `json:"language"`   // BCP-47, e.g. "he", "he-IL"
	FullText    string `json:"full_text"`
}

// Chunk - one bounded slice of a transcript sent to the LLM in a single call.
// Owned by one pipeline invocation, discarded after extraction.
type Chunk struct {
	Text  string
	Index int
}
