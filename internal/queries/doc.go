// Package queries generates and serves dark-web search queries for a
// monitored organization.
//
// The Producer turns a target profile into search queries and matching
// strings through a text-generation backend, falling back to deterministic
// derivations when the backend is unavailable. The Supply owns the query
// lifecycle: it deduplicates across generation rounds, serves each query
// at most once, and applies a quality gate that marks the supply exhausted
// when new rounds stop producing novel queries.
package queries
