package redisearch

import "github.com/kailas-cloud/advsearch/internal/db"

// Store is the Redis surface the backend needs.
type Store interface {
	db.Pinger
	db.HashStore
	db.IndexManager
	db.Searcher
	Close()
}
