// Package indexer keeps a search backend's index in sync with content changes.
//
// Sync writes inline and reports failures to the caller. Async hands operations
// to a single background worker that waits out backend outages and retries
// failed writes.
package indexer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
)

// ErrClosed is returned when an operation is submitted after Close.
var ErrClosed = errors.New("indexer closed")

// Writer is the remote side of an index: the backend's own write protocol.
type Writer interface {
	Write(ctx context.Context, doc document.Document) error
	Remove(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Indexer pushes document changes to one backend.
type Indexer interface {
	Upsert(ctx context.Context, doc document.Document) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Default async settings.
const (
	DefaultQueueSize        = 1000
	DefaultShortInterval    = 60 * time.Second
	DefaultLongInterval     = 3600 * time.Second
	DefaultFailureThreshold = 10
	DefaultMaxAttempts      = 5
)

// Config selects and tunes the indexing strategy.
type Config struct {
	Async bool
	// QueueSize bounds the work queue.
	QueueSize int
	// RecoverySize bounds the stack of failed operations. Defaults to QueueSize.
	RecoverySize int
	// ShortInterval is the wait after a failed probe; LongInterval replaces it
	// once FailureThreshold consecutive probes have failed.
	ShortInterval    time.Duration
	LongInterval     time.Duration
	FailureThreshold int
	// MaxAttempts bounds how many times one operation is written before it is dropped.
	MaxAttempts int
	// OnApplied, if set, runs after each change the engine accepted.
	OnApplied func()
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.RecoverySize <= 0 {
		c.RecoverySize = c.QueueSize
	}
	if c.ShortInterval <= 0 {
		c.ShortInterval = DefaultShortInterval
	}
	if c.LongInterval <= 0 {
		c.LongInterval = DefaultLongInterval
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
}

// New builds the indexer selected by cfg. An async indexer is already started.
func New(backend string, w Writer, cfg Config, logger *zap.Logger) Indexer {
	if !cfg.Async {
		s := NewSync(backend, w, logger)
		s.onApplied = cfg.OnApplied
		return s
	}
	a := NewAsync(backend, w, cfg, logger)
	a.Start()
	return a
}
