// Package pipeline implements the multi-stage relevance analysis that
// turns a scraped page into a PageVerdict.
//
// The stages run in a fixed order for every page:
//
//  1. Preprocessing: raw HTML is stripped down to visible plain text.
//  2. Pre-filter: a cheap substring check against the target's search
//     strings. Pages with no match skip all model inference.
//  3. Language detection: always runs, even for rejected pages, so the
//     verdict records what language the page was written in.
//  4. Zero-shot classification: the page is labeled as a credential
//     leak, database dump, internal document, general mention, or
//     irrelevant.
//  5. Semantic similarity: maximum cosine similarity between a query
//     built from the search strings and overlapping content windows.
//  6. Fusion: classification and similarity are combined into the
//     final relevance decision and a weighted confidence score.
//
// Classification and embedding are remote capabilities behind the
// Classifier and Embedder interfaces; the pipeline itself stays free
// of model runtime dependencies.
package pipeline
