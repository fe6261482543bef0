package pipeline

import "strings"

const (
	// defaultClassifyChunkTokens is the token budget per classification
	// chunk, matching the 512-token input limit of the zero-shot
	// model.
	defaultClassifyChunkTokens = 512

	// defaultMaxClassifyChunks caps how many chunks are classified per
	// page. Leaks tend to surface their nature early, so three
	// chunks cover the useful signal at a fraction of the cost.
	defaultMaxClassifyChunks = 3

	// defaultSimilarityChunkTokens and defaultSimilarityChunkOverlap
	// define the sliding windows embedded for semantic similarity. The
	// overlap keeps matches that straddle a window boundary from being
	// diluted.
	defaultSimilarityChunkTokens  = 400
	defaultSimilarityChunkOverlap = 50
)

// classifyChunks splits text into non-overlapping chunks of at most
// chunkTokens whitespace-delimited tokens, returning at most maxChunks
// of them. Short texts come back as a single chunk unchanged.
func classifyChunks(text string, chunkTokens, maxChunks int) []string {
	tokens := strings.Fields(text)
	if len(tokens) <= chunkTokens {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(tokens) && len(chunks) < maxChunks; start += chunkTokens {
		end := min(start+chunkTokens, len(tokens))
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
	}
	return chunks
}

// similarityChunks splits text into overlapping token windows of
// windowTokens tokens advancing by windowTokens-overlap. Short texts
// come back as a single chunk unchanged.
func similarityChunks(text string, windowTokens, overlap int) []string {
	tokens := strings.Fields(text)
	if len(tokens) <= windowTokens {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(tokens); start += windowTokens - overlap {
		end := min(start+windowTokens, len(tokens))
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
