// Package server exposes the HTTP interfaces of the leak monitor.
//
// Two servers are provided. QueryServer fronts the query supply:
// configuring a target, serving query batches to the scraper, and
// publishing search strings to the analysis side. ScraperServer fronts
// the poll loop: triggering a cycle out of band and reporting loop
// health. Both share the same middleware chain (request IDs, request
// logging, panic recovery) and JSON envelope helpers.
package server
