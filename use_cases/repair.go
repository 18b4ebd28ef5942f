package use_cases

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"where2eat-worker/domain/models"
)

// The model is instructed to answer with a bare JSON array, but responses
// routinely arrive fenced, truncated at the token limit, or with prose
// around them. Parsing escalates through three strategies and never fails:
// a response that yields zero records is logged, not raised.

var (
	codeFenceRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	danglingKeyRe = regexp.MustCompile(`,?\s*"(?:[^"\\]|\\.)*"\s*:?\s*$`)
)

// ParseExtractionResponse turns raw model output into candidate records.
func ParseExtractionResponse(raw string) []models.Restaurant {
	logger := slog.Default().With("component", "repair_parser")

	cleaned := stripCodeFence(raw)

	// Strategy 1: direct parse.
	if records, ok := tryParseRecords(cleaned); ok {
		return records
	}

	// Strategy 2: truncation repair.
	if repaired, ok := repairTruncated(cleaned); ok {
		if records, ok := tryParseRecords(repaired); ok {
			logger.Info("response repaired after truncation",
				"raw_len", len(raw),
				"repaired_len", len(repaired),
			)
			return records
		}
	}

	// Strategy 3: salvage individual record objects.
	records := salvageRecords(cleaned)
	if len(records) == 0 {
		logger.Warn("no records recovered from response",
			"raw_len", len(raw),
			"preview", preview(cleaned, 120),
		)
	} else {
		logger.Info("records salvaged from malformed response", "count", len(records))
	}
	return records
}

// stripCodeFence unwraps ```json fences and trims surrounding prose down to
// the outermost JSON array.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	// Drop any prose before the array; keep everything after its start so
	// the truncation repair still sees the full tail.
	if i := strings.IndexByte(s, '['); i > 0 {
		s = s[i:]
	}
	return strings.TrimSpace(s)
}

func tryParseRecords(s string) ([]models.Restaurant, bool) {
	if s == "" {
		return nil, false
	}
	var records []models.Restaurant
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return nil, false
	}
	return records, true
}

// repairTruncated assumes the response was cut off mid-generation. It scans
// for the last position that sits on a structural boundary (an opening or
// closing brace/bracket, a comma, or the closing quote of a completed string
// literal), truncates there, strips a dangling separator or half-written
// key, then closes every still-open delimiter in reverse order of opening.
//
// Known limitation: a truncation landing exactly on a boundary can produce a
// shape that parses but carries a partially-filled final record. That record
// flows through consolidation like any other partial candidate.
func repairTruncated(s string) (string, bool) {
	lastSafe := -1
	inString, escaped := false, false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
				lastSafe = i + 1 // a completed string literal is safe
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[', '}', ']', ',':
			lastSafe = i + 1
		}
	}
	if lastSafe <= 0 {
		return "", false
	}

	repaired := strings.TrimRight(s[:lastSafe], " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")
	repaired = stripDanglingKey(repaired)
	repaired = strings.TrimRight(repaired, " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")

	open := openDelimiters(repaired)
	closers := make([]byte, 0, len(open))
	for i := len(open) - 1; i >= 0; i-- { // reverse order of opening
		if open[i] == '{' {
			closers = append(closers, '}')
		} else {
			closers = append(closers, ']')
		}
	}
	return repaired + string(closers), true
}

// stripDanglingKey removes a trailing object key that lost its value to the
// truncation. A trailing string preceded by ':' is a completed value and
// stays; so is a string inside an array, where strings are elements rather
// than keys. Anything else is an orphaned key and goes, together with the
// comma that introduced it.
func stripDanglingKey(s string) string {
	loc := danglingKeyRe.FindStringIndex(s)
	if loc == nil {
		return s
	}
	head := strings.TrimRight(s[:loc[0]], " \t\r\n")
	if strings.HasSuffix(head, ":") {
		return s
	}
	if open := openDelimiters(head); len(open) > 0 && open[len(open)-1] == '[' {
		return s
	}
	return head
}

// openDelimiters returns the still-open braces/brackets in opening order.
func openDelimiters(s string) []byte {
	var stack []byte
	inString, escaped := false, false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, byte(r))
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return stack
}

// salvageRecords extracts balanced top-level {...} substrings that mention
// the name field and parses each one independently, discarding failures.
func salvageRecords(s string) []models.Restaurant {
	var records []models.Restaurant
	inString, escaped := false, false
	depth := 0
	start := -1
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidate := s[start : i+1]
					start = -1
					if !strings.Contains(candidate, `"name"`) {
						continue
					}
					var rec models.Restaurant
					if err := json.Unmarshal([]byte(candidate), &rec); err == nil {
						records = append(records, rec)
					}
				}
			}
		}
	}
	return records
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary so the log line stays valid UTF-8.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
