package pipeline

import "context"

// chunkedClassify classifies up to maxChunks chunks of chunkTokens
// tokens independently and selects the best result. The
// highest-confidence non-irrelevant label wins; if every chunk is
// irrelevant, the highest-confidence irrelevant result is returned
// instead.
//
// Design decision: per-chunk classification with a "best non-irrelevant
// wins" rule keeps one paragraph of leaked credentials from being
// averaged away by pages of forum boilerplate around it.
func chunkedClassify(ctx context.Context, classifier Classifier, text string, chunkTokens, maxChunks int) (string, float64, error) {
	var (
		bestLabel      string
		bestConfidence float64
		haveRelevant   bool
	)

	for _, chunk := range classifyChunks(text, chunkTokens, maxChunks) {
		label, confidence, err := classifier.Classify(ctx, chunk)
		if err != nil {
			return "", 0, err
		}

		if label != irrelevantLabel {
			if !haveRelevant || confidence > bestConfidence {
				bestLabel, bestConfidence = label, confidence
				haveRelevant = true
			}
			continue
		}
		if !haveRelevant && (bestLabel == "" || confidence > bestConfidence) {
			bestLabel, bestConfidence = label, confidence
		}
	}

	if bestLabel == "" {
		return irrelevantLabel, 0, nil
	}
	return bestLabel, bestConfidence, nil
}
