// Package dispatcher forwards successfully fetched pages to the analysis
// service in fixed-size batches.
//
// Batches are independent failure domains: a batch whose submission fails
// is recorded and skipped, never retried, and never blocks its siblings.
// The poll loop's next cycle is the system's retry mechanism.
package dispatcher
