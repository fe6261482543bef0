// Package llm provides a client for OpenAI-compatible chat completion
// endpoints and helpers for parsing model output.
//
// The generation backend is used to derive search query seeds and
// human-readable summaries. Model output is treated as untrusted text:
// the parsing helpers tolerate markdown fences, surrounding prose, and
// malformed JSON, degrading to best-effort line extraction rather than
// failing the caller.
package llm
