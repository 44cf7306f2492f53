// Package cache wraps a backend with an expiring LRU of query answers.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/advsearch/internal/backend"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
	"github.com/kailas-cloud/advsearch/internal/metrics"
)

// Defaults.
const (
	DefaultSize = 256
	DefaultTTL  = 30 * time.Second
)

// Backend serves repeated queries from memory. Cached answers are dropped once
// a change has reached the engine: inline after a synchronous write, or from
// the indexer's OnApplied hook when writes are queued.
type Backend struct {
	backend.Backend
	lru *expirable.LRU[string, result.Set]
}

// New wraps b. Non-positive size or ttl fall back to the defaults.
func New(b backend.Backend, size int, ttl time.Duration) *Backend {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Backend{
		Backend: b,
		lru:     expirable.NewLRU[string, result.Set](size, nil, ttl),
	}
}

// Query returns the cached answer or asks the wrapped backend. Errors are not cached.
func (c *Backend) Query(ctx context.Context, cr criteria.Criteria) (result.Set, error) {
	name := c.Name()
	k := key(cr, cr.StartPoint(name))
	if set, ok := c.lru.Get(k); ok {
		metrics.QueryCacheTotal.WithLabelValues(name, "hit").Inc()
		return set, nil
	}
	metrics.QueryCacheTotal.WithLabelValues(name, "miss").Inc()

	set, err := c.Backend.Query(ctx, cr)
	if err != nil {
		return result.Set{}, err //nolint:wrapcheck // already a backend error
	}
	c.lru.Add(k, set)
	return set, nil
}

// Upsert forwards the write and drops cached answers once it is accepted.
func (c *Backend) Upsert(ctx context.Context, doc document.Document) error {
	if err := c.Backend.Upsert(ctx, doc); err != nil {
		return err //nolint:wrapcheck // pass-through
	}
	c.Invalidate()
	return nil
}

// Delete forwards the removal and drops cached answers once it is accepted.
func (c *Backend) Delete(ctx context.Context, id string) error {
	if err := c.Backend.Delete(ctx, id); err != nil {
		return err //nolint:wrapcheck // pass-through
	}
	c.Invalidate()
	return nil
}

// Invalidate drops every cached answer.
func (c *Backend) Invalidate() {
	c.lru.Purge()
}

// key identifies a query independent of author and filter order.
func key(c criteria.Criteria, start int) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Q))
	b.WriteByte('|')
	b.WriteString(joinSorted(c.Authors))
	b.WriteByte('|')
	b.WriteString(c.DateStart)
	b.WriteByte('|')
	b.WriteString(c.DateEnd)
	b.WriteByte('|')
	b.WriteString(joinSorted(c.ActiveSources()))
	b.WriteByte('|')
	b.WriteString(joinSorted(c.ActiveStatuses()))
	b.WriteByte('|')
	b.WriteString(string(c.SortOrder))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(c.PerPage))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(start))
	return b.String()
}

func joinSorted(values []string) string {
	s := append([]string(nil), values...)
	sort.Strings(s)
	return strings.Join(s, ",")
}
