// Package poll runs the crawl loop that drives the whole system:
// fetch a query batch, discover URLs per query, filter already-seen pages,
// fetch the new ones, and dispatch them for analysis.
//
// The loop is cooperative: it stops on its own when the query supply
// reports itself exhausted, and a cycle can also be triggered manually
// between ticks. Overlapping cycles are prevented with a guard, so a slow
// cycle simply absorbs the triggers and ticks that arrive while it runs.
package poll
