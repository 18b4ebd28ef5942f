package models

// Restaurant - one establishment mention as extracted by the LLM.
// The same shape serves both the raw per-chunk candidates and the
// consolidated per-video records; consolidation only changes cardinality.
// Name (Hebrew) is the merge key; everything else is optional.
type Restaurant struct {
	Name        string   `json:"name"`         // Hebrew name as spoken in the video
	NameEnglish string   `json:"name_english"` // English rendering (transliterated if missing)
	Location    Location `json:"location"`
	Cuisine     string   `json:"cuisine"`     // e.g. "hummus", "shawarma", "fine dining"
	PriceRange  string   `json:"price_range"` // "cheap" | "mid" | "expensive"
	Sentiment   string   `json:"sentiment"`   // "positive" | "mixed" | "negative"
	Commentary  string   `json:"commentary"`  // what the host actually said about the place

	MenuItems       []string `json:"menu_items"`
	SpecialFeatures []string `json:"special_features"`

	Contact        Contact `json:"contact"`
	MentionContext string  `json:"mention_context"` // surrounding context of the mention
	BusinessNews   string  `json:"business_news"`   // closures, relocations, new branches

	// Filled by the hallucination detector after consolidation.
	Verity *VerityVerdict `json:"verity,omitempty"`
}

type Location struct {
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Address      string `json:"address"`
	Country      string `json:"country"`
}

type Contact struct {
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	Instagram string `json:"instagram"`
}

// VerityVerdict - result of the external hallucination check on one record.
type VerityVerdict struct {
	IsHallucination bool     `json:"is_hallucination"`
	Confidence      float64  `json:"confidence"`     // 0..1
	Recommendation  string   `json:"recommendation"` // "accept" | "reject" | "review"
	Reasons         []string `json:"reasons"`
}

const (
	RecommendationAccept = "accept"
	RecommendationReject = "reject"
	RecommendationReview = "review"
)
