package pipeline

import (
	"context"
	"strings"
)

// buildSimilarityQuery constructs the source sentence embedded against
// the page content. Joining every search string into one query gives
// the embedding model the full picture of what "about the target"
// means for this profile.
func buildSimilarityQuery(searchStrings []string) string {
	return "Data related to " + strings.Join(searchStrings, ", ")
}

// maxSimilarity embeds the profile query against overlapping content
// windows and returns the highest cosine similarity found. A page is
// as similar as its most similar passage.
func maxSimilarity(ctx context.Context, embedder Embedder, text string, searchStrings []string, windowTokens, overlap int) (float64, error) {
	query := buildSimilarityQuery(searchStrings)
	chunks := similarityChunks(text, windowTokens, overlap)

	scores, err := embedder.Similarity(ctx, query, chunks)
	if err != nil {
		return 0, err
	}

	var best float64
	for _, score := range scores {
		if score > best {
			best = score
		}
	}
	return best, nil
}
