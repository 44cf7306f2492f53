// Package db holds the storage contracts and FT query model shared by the
// Redis store and the RediSearch backend.
package db

import "context"

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore keeps one document per hash key.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
}

// IndexManager creates and inspects FT indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs FT.SEARCH.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
}
