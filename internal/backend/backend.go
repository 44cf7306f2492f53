// Package backend defines the contract every search engine plugs into and the
// glue that binds an engine client to its indexer.
package backend

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
	"github.com/kailas-cloud/advsearch/internal/indexer"
	"github.com/kailas-cloud/advsearch/internal/metrics"
)

// Backend is one registered search engine.
type Backend interface {
	// Name is unique across registered backends and keys start points.
	Name() string
	// Sources lists the document sources this backend can return.
	Sources() []string
	Upsert(ctx context.Context, doc document.Document) error
	Delete(ctx context.Context, id string) error
	// Query returns one page of results starting at the backend's own start point.
	// Failures are reported as domain.ErrBackendQuery.
	Query(ctx context.Context, c criteria.Criteria) (result.Set, error)
	Ping(ctx context.Context) error
	Close() error
}

// Searcher is the read side of an engine client.
type Searcher interface {
	Sources() []string
	Search(ctx context.Context, c criteria.Criteria, start int) (result.Set, error)
	Ping(ctx context.Context) error
}

// Indexed binds a searcher to the indexer that feeds it.
type Indexed struct {
	name    string
	s       Searcher
	indexer indexer.Indexer
}

// New creates a backend from an engine client and its indexer.
func New(name string, s Searcher, idx indexer.Indexer) *Indexed {
	return &Indexed{name: name, s: s, indexer: idx}
}

// Name returns the backend name.
func (b *Indexed) Name() string { return b.name }

// Sources returns the sources of the underlying engine.
func (b *Indexed) Sources() []string { return b.s.Sources() }

// Upsert hands the document to the indexer.
func (b *Indexed) Upsert(ctx context.Context, doc document.Document) error {
	return b.indexer.Upsert(ctx, doc) //nolint:wrapcheck // indexer errors carry the backend name
}

// Delete hands the removal to the indexer.
func (b *Indexed) Delete(ctx context.Context, id string) error {
	return b.indexer.Delete(ctx, id) //nolint:wrapcheck // indexer errors carry the backend name
}

// Query searches the engine from this backend's start point.
func (b *Indexed) Query(ctx context.Context, c criteria.Criteria) (result.Set, error) {
	start := time.Now()
	set, err := b.s.Search(ctx, c, c.StartPoint(b.name))
	metrics.BackendQueryDuration.WithLabelValues(b.name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendQueryErrorsTotal.WithLabelValues(b.name).Inc()
		return result.Set{}, domain.NewQueryError(b.name, err)
	}
	return set, nil
}

// Ping checks engine availability.
func (b *Indexed) Ping(ctx context.Context) error {
	return b.s.Ping(ctx) //nolint:wrapcheck // health reports the raw cause
}

// Close stops the indexer, then releases the engine client if it holds resources.
func (b *Indexed) Close() error {
	errs := []error{b.indexer.Close()}
	if c, ok := b.s.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
