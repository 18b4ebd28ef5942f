package use_cases

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"where2eat-worker/domain/models"
)

func TestParseExtractionResponseValidArray(t *testing.T) {
	raw := `[{"name": "צ'קולי", "name_english": "Checoli", "cuisine": "basque", "sentiment": "positive"}]`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "צ'קולי" || records[0].NameEnglish != "Checoli" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestParseExtractionResponseEmptyArray(t *testing.T) {
	if records := ParseExtractionResponse("[]"); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestParseExtractionResponseCodeFence(t *testing.T) {
	raw := "```json\n[{\"name\": \"חומוס אליהו\"}]\n```"
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "חומוס אליהו" {
		t.Errorf("got name %q", records[0].Name)
	}
}

func TestParseExtractionResponseProseBeforeArray(t *testing.T) {
	raw := "Here are the restaurants mentioned in the transcript:\n[{\"name\": \"מיזנון\"}]"
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "מיזנון" {
		t.Errorf("got name %q", records[0].Name)
	}
}

func TestParseExtractionResponseTruncatedMidKey(t *testing.T) {
	raw := `[{"name": "Checoli", "menu`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected the complete prefix to survive, got %d records", len(records))
	}
	if records[0].Name != "Checoli" {
		t.Errorf("got name %q", records[0].Name)
	}
}

func TestParseExtractionResponseTruncatedMidValue(t *testing.T) {
	raw := `[{"name": "Checoli", "cuisine": "bas`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Checoli" {
		t.Errorf("got name %q", records[0].Name)
	}
	if records[0].Cuisine != "" {
		t.Errorf("half-written value must be dropped, got cuisine %q", records[0].Cuisine)
	}
}

func TestParseExtractionResponseTruncatedAfterValue(t *testing.T) {
	raw := `[{"name": "Checoli", "cuisine": "basque"`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Cuisine != "basque" {
		t.Errorf("completed value must survive, got cuisine %q", records[0].Cuisine)
	}
}

func TestParseExtractionResponseTruncatedInsideList(t *testing.T) {
	raw := `[{"name": "Checoli", "menu_items": ["txakoli", "pint`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0].MenuItems) != 1 || records[0].MenuItems[0] != "txakoli" {
		t.Errorf("expected the completed list item only, got %v", records[0].MenuItems)
	}
}

func TestParseExtractionResponseTruncatedSecondRecord(t *testing.T) {
	raw := `[{"name": "שגב", "sentiment": "positive"}, {"name": "האחים", "sent`
	records := ParseExtractionResponse(raw)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "שגב" || records[1].Name != "האחים" {
		t.Errorf("unexpected names: %q, %q", records[0].Name, records[1].Name)
	}
	if records[0].Sentiment != "positive" {
		t.Errorf("intact first record must keep its fields, got %q", records[0].Sentiment)
	}
}

func TestParseExtractionResponseTruncatedNestedObject(t *testing.T) {
	raw := `[{"name": "Checoli", "location": {"city": "תל אביב", "neigh`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Location.City != "תל אביב" {
		t.Errorf("nested completed field must survive, got %q", records[0].Location.City)
	}
}

func TestParseExtractionResponseTruncationSweep(t *testing.T) {
	full := `[{"name": "Checoli", "cuisine": "basque", "menu_items": ["txakoli", "pintxos"], ` +
		`"location": {"city": "Tel Aviv", "country": "Israel"}}, ` +
		`{"name": "Segev", "sentiment": "positive", "commentary": "the chef opened a second branch"}]`

	// Verify the full payload parses before sweeping.
	var want []models.Restaurant
	if err := json.Unmarshal([]byte(full), &want); err != nil {
		t.Fatalf("test payload invalid: %v", err)
	}

	// Any truncation that keeps the first record intact must recover it.
	firstIntact := strings.Index(full, `{"name": "Segev"`)
	for cut := firstIntact; cut < len(full); cut++ {
		records := ParseExtractionResponse(full[:cut])
		if len(records) == 0 {
			t.Errorf("cut at %d recovered nothing", cut)
			continue
		}
		if records[0].Name != "Checoli" {
			t.Errorf("cut at %d lost the intact first record, got %q", cut, records[0].Name)
		}
	}
}

func TestParseExtractionResponseSalvage(t *testing.T) {
	// Structurally broken beyond bracket repair: stray text between
	// objects. Each balanced object is still recoverable on its own.
	raw := `[{"name": "מלגו ומלבר"}, oops {"name": "הסלון"} trailing`
	records := ParseExtractionResponse(raw)

	if len(records) != 2 {
		t.Fatalf("expected 2 salvaged records, got %d", len(records))
	}
	if records[0].Name != "מלגו ומלבר" || records[1].Name != "הסלון" {
		t.Errorf("unexpected names: %q, %q", records[0].Name, records[1].Name)
	}
}

func TestParseExtractionResponseSalvageSkipsNamelessObjects(t *testing.T) {
	raw := `garbage {"city": "חיפה"} more {"name": "עלמא"} end`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "עלמא" {
		t.Errorf("got name %q", records[0].Name)
	}
}

func TestParseExtractionResponseGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "no json here", "42", `"just a string"`} {
		if records := ParseExtractionResponse(raw); len(records) != 0 {
			t.Errorf("input %q yielded %d records, want 0", raw, len(records))
		}
	}
}

func TestParseExtractionResponseEscapedQuotesInValues(t *testing.T) {
	raw := `[{"name": "מסעדת \"הבית\"", "commentary": "brackets in text: } ] no problem"}]`
	records := ParseExtractionResponse(raw)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != `מסעדת "הבית"` {
		t.Errorf("escaped quotes mangled: %q", records[0].Name)
	}
}

func TestPreviewCutsOnRuneBoundary(t *testing.T) {
	hebrew := strings.Repeat("א", 10) // 2 bytes per rune
	got := preview(hebrew, 5)
	if !utf8.ValidString(got) {
		t.Errorf("preview split a rune: %q", got)
	}
	if got != strings.Repeat("א", 2) {
		t.Errorf("got %q, want 2 whole runes", got)
	}
	if got := preview("abc", 5); got != "abc" {
		t.Errorf("short input must pass through, got %q", got)
	}
}

func TestStripCodeFenceVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain fence", "```\n[1]\n```", "[1]"},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"no fence", "[1]", "[1]"},
		{"prose prefix", "sure, here: [1]", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
