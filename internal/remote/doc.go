// Package remote provides typed HTTP clients for the leak-monitoring
// services when they run as separate processes.
//
// QueryClient talks to the query-supply service (configure the target,
// fetch query batches and search strings) and AnalysisClient talks to
// the relevance-analysis service (submit page batches). Both speak the
// same JSON shapes the in-process servers expose, so a deployment can
// mix embedded and remote components freely.
package remote
