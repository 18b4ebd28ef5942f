package use_cases

import (
	"fmt"
	"strings"
)

// The field schema is the output contract: the repair parser keys on these
// exact names, so the prompt must stay identical in shape for every chunk.
const extractionPromptTemplate = `You are analyzing a transcript of a Hebrew food vlog episode. Extract every restaurant, cafe, food stand or bar that the host actually mentions.

Return ONLY a JSON array. No markdown, no explanations. Each element describes one establishment:

[
  {
    "name": "שם המסעדה בעברית (required)",
    "name_english": "English name if said or known, else empty",
    "location": {"city": "", "neighborhood": "", "address": "", "country": ""},
    "cuisine": "cuisine type, e.g. hummus, shawarma, sushi",
    "price_range": "cheap | mid | expensive",
    "sentiment": "positive | mixed | negative",
    "commentary": "what the host said about the place, in the transcript language",
    "menu_items": ["dishes mentioned, in order"],
    "special_features": ["kosher", "vegan options", "open late", ...],
    "contact": {"phone": "", "website": "", "instagram": ""},
    "mention_context": "the sentence or situation in which the place came up",
    "business_news": "closures, relocations, new branches, if mentioned"
  }
]

Rules:
- Only establishments the host genuinely talks about. Skip passing references to supermarkets or home cooking.
- Leave a field empty ("" or []) when the transcript does not support it. Never invent addresses or phone numbers.
- Return [] if no establishment is mentioned.

Transcript (%s)%s:
---
%s
---`

// BuildExtractionPrompt renders the per-chunk extraction prompt.
// chunkIndex/chunkTotal annotate chunked transcripts so the model knows it
// sees a window, not the whole episode.
func BuildExtractionPrompt(chunkText, language string, chunkIndex, chunkTotal int) string {
	if strings.TrimSpace(language) == "" {
		language = "he"
	}
	part := ""
	if chunkTotal > 1 {
		part = fmt.Sprintf(", part %d of %d", chunkIndex+1, chunkTotal)
	}
	return fmt.Sprintf(extractionPromptTemplate, language, part, chunkText)
}
