package pipeline

import "math"

const (
	// defaultClassificationThreshold is the minimum confidence for a
	// non-irrelevant label to count as a relevance signal on its own.
	defaultClassificationThreshold = 0.65

	// defaultSimilarityThreshold is the minimum cosine similarity for
	// the embedding signal to count as relevant on its own.
	defaultSimilarityThreshold = 0.75

	// classificationWeight and similarityWeight blend the two scores
	// into the overall confidence. Classification carries more weight
	// because it is the more specific signal.
	classificationWeight = 0.6
	similarityWeight     = 0.4
)

// decideRelevance fuses the classification and similarity stages into
// the final verdict. A page is relevant when either signal clears its
// threshold:
//
//   - the label is not "irrelevant" and the classification confidence
//     meets classificationThreshold, or
//   - the similarity score meets similarityThreshold.
//
// The OR fusion is deliberate: a strong semantic match rescues pages
// the classifier mislabels, and a confident classification rescues
// pages whose phrasing the embedding model does not recognize.
//
// The returned confidence is the weighted average of both scores,
// rounded to 4 decimals. It is reported even for irrelevant pages.
func decideRelevance(label string, classificationConfidence, similarityScore, classificationThreshold, similarityThreshold float64) (bool, float64) {
	classifiedRelevant := label != irrelevantLabel &&
		classificationConfidence >= classificationThreshold
	similarEnough := similarityScore >= similarityThreshold

	confidence := roundScore(classificationWeight*classificationConfidence +
		similarityWeight*similarityScore)

	return classifiedRelevant || similarEnough, confidence
}

// roundScore rounds to 4 decimal places, the precision verdicts are
// reported with.
func roundScore(x float64) float64 {
	return math.Round(x*10000) / 10000
}
