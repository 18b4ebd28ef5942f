package use_cases

import (
	"strings"
	"testing"
)

func TestBuildExtractionPromptContainsSchema(t *testing.T) {
	prompt := BuildExtractionPrompt("ביקרנו בחומוס אליהו", "he", 0, 1)

	// The repair parser and the Restaurant JSON tags key on these names.
	for _, field := range []string{
		`"name"`, `"name_english"`, `"location"`, `"cuisine"`,
		`"price_range"`, `"sentiment"`, `"commentary"`, `"menu_items"`,
		`"special_features"`, `"contact"`, `"mention_context"`, `"business_news"`,
	} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt is missing schema field %s", field)
		}
	}
	if !strings.Contains(prompt, "ביקרנו בחומוס אליהו") {
		t.Error("prompt does not embed the chunk text")
	}
}

func TestBuildExtractionPromptSingleChunkHasNoPartLabel(t *testing.T) {
	prompt := BuildExtractionPrompt("text", "he", 0, 1)
	if strings.Contains(prompt, "part ") {
		t.Error("single-chunk prompt must not carry a part label")
	}
}

func TestBuildExtractionPromptChunkedCarriesPartLabel(t *testing.T) {
	prompt := BuildExtractionPrompt("text", "he", 1, 3)
	if !strings.Contains(prompt, "part 2 of 3") {
		t.Error("chunked prompt must name its window")
	}
}

func TestBuildExtractionPromptDefaultsLanguage(t *testing.T) {
	prompt := BuildExtractionPrompt("text", "  ", 0, 1)
	if !strings.Contains(prompt, "Transcript (he)") {
		t.Error("blank language must default to he")
	}
}
