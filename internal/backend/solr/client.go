// Package solr is the Apache Solr search backend.
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/backend"
	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

// DefaultTimeout bounds every Solr request.
const DefaultTimeout = 30 * time.Second

// Client talks to one Solr core over its HTTP API.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

// New creates a Solr client for the core at rawURL.
func New(rawURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	rawURL = strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if rawURL == "" {
		return nil, fmt.Errorf("solr url is required: %w", domain.ErrConfiguration)
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("solr url %q: %w: %w", rawURL, domain.ErrConfiguration, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:   rawURL,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// Sources returns the document sources Solr indexes.
func (c *Client) Sources() []string {
	return []string{string(document.SourceWiki), string(document.SourceTicket)}
}

// Write adds or replaces a document and commits.
func (c *Client) Write(ctx context.Context, doc document.Document) error {
	fields := doc.Fields()
	for k, v := range fields {
		if t, ok := v.(time.Time); ok {
			fields[k] = t.UTC().Format(DateLayout)
		}
	}
	return c.update(ctx, []map[string]any{fields})
}

// Remove deletes a document by id and commits.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.update(ctx, map[string]any{"delete": map[string]string{"id": id}})
}

// Ping reports whether the core answers its ping handler with status OK.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/admin/ping", url.Values{"wt": {"json"}}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return fmt.Errorf("solr ping: status %q", resp.Status)
	}
	return nil
}

// Search runs one page of the query starting at start.
func (c *Client) Search(ctx context.Context, cr criteria.Criteria, start int) (result.Set, error) {
	q, params := Build(cr, start, c.logger)
	params.Set("q", q)

	var resp selectResponse
	if err := c.get(ctx, "/select", params, &resp); err != nil {
		return result.Set{}, err
	}

	items := make([]result.Result, 0, len(resp.Response.Docs))
	for _, d := range resp.Response.Docs {
		items = append(items, toResult(d, cr.Q))
	}
	return result.Set{Total: resp.Response.NumFound, Items: items}, nil
}

type selectResponse struct {
	Response struct {
		NumFound int              `json:"numFound"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
}

func toResult(d map[string]any, query string) result.Result {
	date := ""
	// Solr renders stored dates with milliseconds when they are non-zero.
	if t, err := time.Parse(time.RFC3339Nano, str(d[document.FieldTime])); err == nil {
		date = criteria.FormatDate(t)
	}
	score, _ := d["score"].(float64)
	r := result.New(
		str(d[document.FieldID]),
		score,
		str(d[document.FieldSource]),
		str(d[document.FieldName]),
		backend.Summarize(str(d[document.FieldText]), query),
		date,
		str(d[document.FieldAuthor]),
	)
	if n, err := strconv.Atoi(str(d[document.FieldTicketID])); err == nil {
		r = r.WithTicketID(n)
	}
	return r
}

// str flattens a stored Solr value; multi-valued fields yield their first value.
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		if len(x) == 0 {
			return ""
		}
		return str(x[0])
	default:
		return fmt.Sprint(x)
	}
}

func (c *Client) update(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/update?commit=true", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.base+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("solr %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("solr %s: status %d: %s", req.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("solr %s: decode: %w", req.URL.Path, err)
	}
	return nil
}
