package domain

import "context"

// ImageResult is the outcome of one image lookup. Results correlate to
// queries by the Query field, never by slice position: blank queries and
// failed lookups produce no result at all.
type ImageResult struct {
	Query string
	URL   string
}

// ImageSearcher resolves item names to representative image references.
type ImageSearcher interface {
	// Resolve returns at most one result per non-blank query, in input
	// order. A failed or empty lookup is a soft failure: it is logged by
	// the implementation and omitted, never aborting the other queries.
	Resolve(ctx context.Context, queries []string) []ImageResult
}
