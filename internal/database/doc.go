// Package database provides SQLite-based storage for the leak monitor.
//
// This package implements the Store, which persists:
//   - Seen onion URLs, so restarts do not re-fetch pages already
//     processed in earlier poll cycles
//   - Page verdicts produced by the relevance pipeline, for historical
//     reporting
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a
// server-backed database because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
