// Package redisearch is the Redis search-module backend. Documents are stored
// as hashes under a key prefix and indexed by a single FT index.
package redisearch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/backend"
	"github.com/kailas-cloud/advsearch/internal/db"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

// Key layout.
const (
	IndexName = "advsearch:idx"
	KeyPrefix = "advsearch:doc:"
)

// Client indexes and searches documents in Redis.
type Client struct {
	store  Store
	logger *zap.Logger
}

// New wraps a store. Call EnsureIndex before the first search.
func New(store Store, logger *zap.Logger) *Client {
	return &Client{store: store, logger: logger}
}

// IndexDefinition returns the FT schema of the document index.
func IndexDefinition() *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		WeightedText(document.FieldName, 2).
		Text(document.FieldText).
		Tag(document.FieldSource).
		TagWithOpts(document.FieldAuthor, ",", true).
		Tag(document.FieldStatus).
		SortableNumeric(document.FieldTime).
		Numeric(document.FieldTicketID).
		MustBuild()
}

// EnsureIndex creates the document index unless it exists.
func (c *Client) EnsureIndex(ctx context.Context) error {
	exists, err := c.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.store.CreateIndex(ctx, IndexDefinition()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	c.logger.Info("Created search index", zap.String("index", IndexName))
	return nil
}

// Sources returns the document sources stored in Redis.
func (c *Client) Sources() []string {
	return []string{string(document.SourceWiki), string(document.SourceTicket)}
}

// Write stores the document hash. Times are stored as unix seconds.
func (c *Client) Write(ctx context.Context, doc document.Document) error {
	fields := make(map[string]string)
	for k, v := range doc.Fields() {
		switch x := v.(type) {
		case time.Time:
			fields[k] = strconv.FormatInt(x.Unix(), 10)
		case int:
			fields[k] = strconv.Itoa(x)
		case string:
			fields[k] = x
		default:
			fields[k] = fmt.Sprint(x)
		}
	}
	return c.store.HSet(ctx, KeyPrefix+doc.ID(), fields) //nolint:wrapcheck // db.Error carries the op
}

// Remove deletes the document hash.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.store.Del(ctx, KeyPrefix+id) //nolint:wrapcheck // db.Error carries the op
}

// Ping checks Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx) //nolint:wrapcheck // store wraps with op name
}

// Search runs one page of the query starting at start.
func (c *Client) Search(ctx context.Context, cr criteria.Criteria, start int) (result.Set, error) {
	res, err := c.store.Search(ctx, Build(IndexName, cr, start, c.logger))
	if err != nil {
		return result.Set{}, err //nolint:wrapcheck // db.Error carries the op
	}

	items := make([]result.Result, 0, len(res.Entries))
	for _, e := range res.Entries {
		items = append(items, toResult(e, cr.Q))
	}
	return result.Set{Total: res.Total, Items: items}, nil
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	c.store.Close()
	return nil
}

func toResult(e db.SearchEntry, query string) result.Result {
	f := e.Fields
	id := f[document.FieldID]
	if id == "" {
		id = strings.TrimPrefix(e.Key, KeyPrefix)
	}
	date := ""
	if sec, err := strconv.ParseInt(f[document.FieldTime], 10, 64); err == nil {
		date = criteria.FormatDate(time.Unix(sec, 0).UTC())
	}
	r := result.New(
		id,
		e.Score,
		f[document.FieldSource],
		f[document.FieldName],
		backend.Summarize(f[document.FieldText], query),
		date,
		f[document.FieldAuthor],
	)
	if n, err := strconv.Atoi(f[document.FieldTicketID]); err == nil {
		r = r.WithTicketID(n)
	}
	return r
}
