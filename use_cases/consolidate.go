package use_cases

import (
	"strings"

	"where2eat-worker/domain/models"
)

// One establishment is routinely mentioned in more than one overlapping
// chunk, each mention partially filled. Consolidation collapses the
// candidates to one record per establishment, merging fields so that no
// information extracted from any chunk is lost.

// placeholderValues - strings the model emits when it has nothing to say.
var placeholderValues = map[string]bool{
	"":              true,
	"unknown":       true,
	"n/a":           true,
	"na":            true,
	"none":          true,
	"null":          true,
	"-":             true,
	"not mentioned": true,
	"לא ידוע":       true, // "unknown"
	"לא צוין":       true, // "not specified"
}

func isPlaceholder(s string) bool {
	return placeholderValues[strings.ToLower(strings.TrimSpace(s))]
}

// identityKey - case-folded trimmed Hebrew name, falling back to the English
// name. Empty key means the record is unidentifiable and is dropped.
func identityKey(r *models.Restaurant) string {
	if name := strings.TrimSpace(r.Name); !isPlaceholder(name) {
		return strings.ToLower(name)
	}
	if name := strings.TrimSpace(r.NameEnglish); !isPlaceholder(name) {
		return strings.ToLower(name)
	}
	return ""
}

// ConsolidateRecords collapses candidates from every chunk (in chunk order)
// into one record per distinct establishment. The first candidate seen under
// a key seeds the record; later candidates merge into it.
func ConsolidateRecords(candidates []models.Restaurant) []models.Restaurant {
	byKey := make(map[string]*models.Restaurant)
	var order []string

	for i := range candidates {
		key := identityKey(&candidates[i])
		if key == "" {
			continue
		}
		existing, ok := byKey[key]
		if !ok {
			seed := candidates[i]
			seed.Name = strings.TrimSpace(seed.Name)
			seed.NameEnglish = strings.TrimSpace(seed.NameEnglish)
			byKey[key] = &seed
			order = append(order, key)
			continue
		}
		mergeRecord(existing, &candidates[i])
	}

	out := make([]models.Restaurant, 0, len(order))
	for _, key := range order {
		rec := byKey[key]
		if isPlaceholder(rec.NameEnglish) {
			rec.NameEnglish = TransliterateName(rec.Name)
		}
		out = append(out, *rec)
	}
	return out
}

// mergeRecord folds an incoming candidate into the existing record.
// List fields union in first-seen order; free text keeps the strictly longer
// non-placeholder value; nested groups fill blanks only.
func mergeRecord(dst, src *models.Restaurant) {
	dst.MenuItems = unionStrings(dst.MenuItems, src.MenuItems)
	dst.SpecialFeatures = unionStrings(dst.SpecialFeatures, src.SpecialFeatures)

	dst.Commentary = preferLonger(dst.Commentary, src.Commentary)
	dst.MentionContext = preferLonger(dst.MentionContext, src.MentionContext)
	dst.BusinessNews = preferLonger(dst.BusinessNews, src.BusinessNews)

	fillBlank(&dst.NameEnglish, src.NameEnglish)
	fillBlank(&dst.Cuisine, src.Cuisine)
	fillBlank(&dst.PriceRange, src.PriceRange)
	fillBlank(&dst.Sentiment, src.Sentiment)

	fillBlank(&dst.Location.City, src.Location.City)
	fillBlank(&dst.Location.Neighborhood, src.Location.Neighborhood)
	fillBlank(&dst.Location.Address, src.Location.Address)
	fillBlank(&dst.Location.Country, src.Location.Country)

	fillBlank(&dst.Contact.Phone, src.Contact.Phone)
	fillBlank(&dst.Contact.Website, src.Contact.Website)
	fillBlank(&dst.Contact.Instagram, src.Contact.Instagram)
}

// unionStrings appends incoming values that are neither placeholders nor
// already present, preserving first-seen order.
func unionStrings(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	out := existing
	for _, v := range incoming {
		trimmed := strings.TrimSpace(v)
		if isPlaceholder(trimmed) || seen[strings.ToLower(trimmed)] {
			continue
		}
		seen[strings.ToLower(trimmed)] = true
		out = append(out, trimmed)
	}
	return out
}

// preferLonger keeps existing unless incoming is non-placeholder and
// strictly longer; a longer value is assumed to be the more detailed one.
func preferLonger(existing, incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if isPlaceholder(incoming) {
		return existing
	}
	if len([]rune(incoming)) > len([]rune(existing)) {
		return incoming
	}
	return existing
}

// fillBlank overwrites dst only when it is empty or a known placeholder.
func fillBlank(dst *string, src string) {
	src = strings.TrimSpace(src)
	if isPlaceholder(src) {
		return
	}
	if isPlaceholder(*dst) {
		*dst = src
	}
}
