// Package model defines the core data structures shared across the
// leakscan services: target profiles, fetch results, and page verdicts.
//
// These types are passed by value between components and are never
// mutated after creation.
package model
