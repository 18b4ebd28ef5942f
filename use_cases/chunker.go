package use_cases

import "where2eat-worker/domain/models"

// Sentence-terminating runes for Hebrew transcripts: the Latin set plus
// sof pasuq. Newlines count because auto-generated transcripts often break
// lines at utterance boundaries.
var sentenceTerminators = map[rune]bool{
	'.':      true,
	'!':      true,
	'?':      true,
	'\n':     true,
	'׃': true, // ׃ sof pasuq
}

// SplitTranscript cuts a transcript into overlapping windows of at most
// chunkSize runes. Each cut is moved backward to the nearest sentence
// terminator, but never further back than the window midpoint, so a chunk
// is never less than half full. The next window starts overlap runes
// before the previous cut so adjoining chunks share context; the
// consolidator relies on that overlap to stitch split mentions together.
// When a boundary cut leaves a chunk shorter than the overlap, the next
// window is clamped to start just past the previous one, so the walk
// always advances.
func SplitTranscript(text string, chunkSize, overlap int) []models.Chunk {
	runes := []rune(text)
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []models.Chunk{{Text: text, Index: 0}}
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	var chunks []models.Chunk
	start := 0
	for {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, models.Chunk{Text: string(runes[start:]), Index: len(chunks)})
			return chunks
		}

		cut := end
		midpoint := start + chunkSize/2
		for i := end - 1; i > midpoint; i-- {
			if sentenceTerminators[runes[i]] {
				cut = i + 1 // keep the terminator with the left chunk
				break
			}
		}

		chunks = append(chunks, models.Chunk{Text: string(runes[start:cut]), Index: len(chunks)})

		// A chunk shortened by the boundary search can be smaller than the
		// overlap; the next window must still start after this one did.
		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
}
