// Package bleve is the embedded search backend: an on-disk bleve index living
// inside the service process.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/backend"
	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

var storedFields = []string{
	document.FieldID, document.FieldSource, document.FieldName, document.FieldText,
	document.FieldAuthor, document.FieldTime, document.FieldTicketID,
}

// Client indexes and searches documents in a bleve index.
type Client struct {
	index  bleve.Index
	logger *zap.Logger
}

// Open opens the index at path, creating it when absent.
func Open(path string, logger *zap.Logger) (*Client, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("bleve index path is required: %w", domain.ErrConfiguration)
	}

	index, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		index, err = bleve.New(path, Mapping())
		if err == nil {
			logger.Info("Created bleve index", zap.String("path", path))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return NewWithIndex(index, logger), nil
}

// NewWithIndex wraps an already opened index.
func NewWithIndex(index bleve.Index, logger *zap.Logger) *Client {
	return &Client{index: index, logger: logger}
}

// Sources returns the document sources stored in the index.
func (c *Client) Sources() []string {
	return []string{string(document.SourceWiki), string(document.SourceTicket)}
}

// Write indexes or replaces the document.
func (c *Client) Write(_ context.Context, doc document.Document) error {
	if err := c.index.Index(doc.ID(), doc.Fields()); err != nil {
		return fmt.Errorf("index %s: %w", doc.ID(), err)
	}
	return nil
}

// Remove deletes the document.
func (c *Client) Remove(_ context.Context, id string) error {
	if err := c.index.Delete(id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Ping checks that the index is open and readable.
func (c *Client) Ping(_ context.Context) error {
	if _, err := c.index.DocCount(); err != nil {
		return fmt.Errorf("doc count: %w", err)
	}
	return nil
}

// Search runs one page of the query starting at start.
func (c *Client) Search(ctx context.Context, cr criteria.Criteria, start int) (result.Set, error) {
	req := bleve.NewSearchRequestOptions(Build(cr, c.logger), cr.PerPage, start, false)
	req.Fields = storedFields
	switch cr.SortOrder {
	case criteria.SortOldest:
		req.SortBy([]string{document.FieldTime, "_id"})
	case criteria.SortNewest:
		req.SortBy([]string{"-" + document.FieldTime, "_id"})
	}

	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return result.Set{}, fmt.Errorf("search: %w", err)
	}

	items := make([]result.Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := result.New(
			hit.ID,
			hit.Score,
			field(hit.Fields, document.FieldSource),
			field(hit.Fields, document.FieldName),
			backend.Summarize(field(hit.Fields, document.FieldText), cr.Q),
			date(field(hit.Fields, document.FieldTime)),
			field(hit.Fields, document.FieldAuthor),
		)
		if n, ok := hit.Fields[document.FieldTicketID].(float64); ok {
			r = r.WithTicketID(int(n))
		}
		items = append(items, r)
	}
	return result.Set{Total: int(res.Total), Items: items}, nil
}

// Close closes the index.
func (c *Client) Close() error {
	return c.index.Close() //nolint:wrapcheck // nothing to add
}

func field(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

func date(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return ""
	}
	return criteria.FormatDate(t.UTC())
}
