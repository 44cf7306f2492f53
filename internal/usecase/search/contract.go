package search

import (
	"context"

	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

// Backend is the query side of a registered search engine.
type Backend interface {
	Name() string
	Sources() []string
	Query(ctx context.Context, c criteria.Criteria) (result.Set, error)
}

// LinkResolver turns a query that is itself a link (ticket number, wiki page)
// into a direct URL.
type LinkResolver interface {
	Resolve(q string) (string, bool)
}
