// Package postgres is the PostgreSQL full-text search backend: documents live
// in one table with a weighted tsvector column.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/backend"
	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

const schema = `
CREATE TABLE IF NOT EXISTS ` + TableName + ` (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  text TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT '',
  ticket_id INTEGER,
  time TIMESTAMPTZ,
  fields JSONB NOT NULL DEFAULT '{}',
  tsv tsvector GENERATED ALWAYS AS (
    setweight(to_tsvector('` + textConfig + `', name), 'A') ||
    setweight(to_tsvector('` + textConfig + `', text), 'B')
  ) STORED
);
CREATE INDEX IF NOT EXISTS ` + TableName + `_tsv_idx ON ` + TableName + ` USING GIN (tsv);
CREATE INDEX IF NOT EXISTS ` + TableName + `_time_idx ON ` + TableName + ` (time);
`

const upsert = `
INSERT INTO ` + TableName + ` (id, source, name, text, author, status, ticket_id, time, fields)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  source = EXCLUDED.source,
  name = EXCLUDED.name,
  text = EXCLUDED.text,
  author = EXCLUDED.author,
  status = EXCLUDED.status,
  ticket_id = EXCLUDED.ticket_id,
  time = EXCLUDED.time,
  fields = EXCLUDED.fields;
`

// Client indexes and searches documents in PostgreSQL.
type Client struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to the database at dsn.
func Open(dsn string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required: %w", domain.ErrConfiguration)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db, logger), nil
}

// New wraps an open database handle.
func New(db *sql.DB, logger *zap.Logger) *Client {
	return &Client{db: db, logger: logger}
}

// EnsureSchema creates the documents table and its indexes if missing.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Sources returns the document sources stored in the table.
func (c *Client) Sources() []string {
	return []string{string(document.SourceWiki), string(document.SourceTicket)}
}

// Write inserts or replaces the document row.
func (c *Client) Write(ctx context.Context, doc document.Document) error {
	fields, err := json.Marshal(doc.Fields())
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	var (
		status   string
		ticketID sql.NullInt64
		ts       sql.NullTime
	)
	if t := doc.Ticket(); t != nil {
		status = t.Status
		ticketID = sql.NullInt64{Int64: int64(t.ID), Valid: true}
	}
	if !doc.Time().IsZero() {
		ts = sql.NullTime{Time: doc.Time(), Valid: true}
	}

	_, err = c.db.ExecContext(ctx, upsert,
		doc.ID(), string(doc.Source()), doc.Name(), doc.Text(), doc.Author(), status, ticketID, ts, fields)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", doc.ID(), err)
	}
	return nil
}

// Remove deletes the document row.
func (c *Client) Remove(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM `+TableName+` WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx) //nolint:wrapcheck // health reports the raw cause
}

// Search runs one page of the query starting at start.
func (c *Client) Search(ctx context.Context, cr criteria.Criteria, start int) (result.Set, error) {
	query, args := Build(cr, start, c.logger)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return result.Set{}, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var set result.Set
	for rows.Next() {
		var (
			id, source, name, text, author string
			ts                             sql.NullTime
			ticketID                       sql.NullInt64
			score                          float64
		)
		if err := rows.Scan(&id, &source, &name, &text, &author, &ts, &ticketID, &score, &set.Total); err != nil {
			return result.Set{}, fmt.Errorf("scan: %w", err)
		}
		date := ""
		if ts.Valid {
			date = criteria.FormatDate(ts.Time.UTC())
		}
		r := result.New(id, score, source, name, backend.Summarize(text, cr.Q), date, author)
		if ticketID.Valid {
			r = r.WithTicketID(int(ticketID.Int64))
		}
		set.Items = append(set.Items, r)
	}
	if err := rows.Err(); err != nil {
		return result.Set{}, fmt.Errorf("rows: %w", err)
	}

	// Past the last match the window count has no row to ride on.
	if len(set.Items) == 0 && start > 0 {
		total, err := c.count(ctx, cr)
		if err != nil {
			return result.Set{}, err
		}
		set.Total = total
	}
	return set, nil
}

func (c *Client) count(ctx context.Context, cr criteria.Criteria) (int, error) {
	query, args := BuildCount(cr, c.logger)
	var total int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.db.Close() //nolint:wrapcheck // nothing to add
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
