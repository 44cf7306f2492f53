// Package search implements the search coordinator: it fans a query out to
// every registered backend, merges the answers into one page and keeps the
// per-backend pagination cursors.
package search

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
	"github.com/kailas-cloud/advsearch/internal/metrics"
)

// Warnings shown to the caller.
const (
	WarnNoBackends = "No advanced search providers found. You must register a search backend."
	WarnNoResults  = "No results."
)

// DefaultBackendTimeout bounds a single backend query.
const DefaultBackendTimeout = 5 * time.Second

// Config holds coordinator settings.
type Config struct {
	DefaultPerPage  int
	BackendTimeout  time.Duration
	TicketStatuses  []string // every status offered as a filter
	EnabledStatuses []string // statuses active when the request names none
	BaseURL         string   // prefix of result and paging links
}

// Response is the rendering payload of one search request.
type Response struct {
	Criteria criteria.Criteria
	Page     result.Page
	Warnings []string
	// Redirect is set when the query resolved to a direct link.
	Redirect string
	// NextHref links to the next page with updated cursors.
	NextHref string
}

// Service coordinates searches over the registered backends.
type Service struct {
	backends []Backend
	links    LinkResolver
	cfg      Config
	logger   *zap.Logger
}

// New creates a search coordinator. Backends are queried and tie-broken in the given order.
// links may be nil to disable quickjump.
func New(backends []Backend, links LinkResolver, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = criteria.DefaultPerPage
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = DefaultBackendTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{backends: backends, links: links, cfg: cfg, logger: logger}
}

// Sources returns the union of the sources of all backends, sorted.
func (s *Service) Sources() []string {
	seen := map[string]struct{}{}
	for _, b := range s.backends {
		for _, src := range b.Sources() {
			seen[src] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for src := range seen {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Criteria builds normalized criteria from request arguments. Malformed paging
// arguments fall back to defaults and are logged.
func (s *Service) Criteria(args url.Values) criteria.Criteria {
	perPage, ok := criteria.ParsePerPage(args.Get("per_page"), s.cfg.DefaultPerPage)
	if !ok {
		s.logger.Warn("Could not set per_page", zap.String("per_page", args.Get("per_page")))
	}
	page, _ := criteria.ParsePage(args.Get("page"))

	sources := s.Sources()
	filters := make([]criteria.Filter, 0, len(sources))
	for _, src := range sources {
		filters = append(filters, criteria.Filter{Name: src, Active: args.Get(src) != ""})
	}

	names := make([]string, 0, len(s.backends))
	for _, b := range s.backends {
		names = append(names, b.Name())
	}

	c := criteria.Criteria{
		Q:              args.Get("q"),
		Authors:        args["author"],
		DateStart:      args.Get("date_start"),
		DateEnd:        args.Get("date_end"),
		Sources:        filters,
		TicketStatuses: s.ticketStatuses(args),
		PerPage:        perPage,
		Page:           page,
		SortOrder:      criteria.ParseSortOrder(args.Get("sort_order")),
		StartPoints:    ParseStartPoints(args, names),
	}
	c.Normalize()
	return c
}

// ticketStatuses marks the statuses named in args active. With none named the
// configured defaults are active.
func (s *Service) ticketStatuses(args url.Values) []criteria.Filter {
	explicit := false
	for _, st := range s.cfg.TicketStatuses {
		if args.Get(statusKey(st)) != "" {
			explicit = true
			break
		}
	}

	defaults := map[string]bool{}
	if !explicit {
		for _, st := range s.cfg.EnabledStatuses {
			defaults[st] = true
		}
	}

	out := make([]criteria.Filter, 0, len(s.cfg.TicketStatuses))
	for _, st := range s.cfg.TicketStatuses {
		out = append(out, criteria.Filter{Name: st, Active: args.Get(statusKey(st)) != "" || defaults[st]})
	}
	return out
}

func statusKey(status string) string { return "status_" + status }

// Handle answers a search request: it builds criteria, short-circuits blank
// forms and quickjumps, then searches.
func (s *Service) Handle(ctx context.Context, args url.Values) (Response, error) {
	c := s.Criteria(args)
	if c.IsBlank() {
		return s.respond(Response{Criteria: c, Page: emptyPage(c)}), nil
	}

	// A query typed in the header search box carries no paging arguments.
	if s.links != nil && args.Get("page") == "" && args.Get("per_page") == "" {
		if href, ok := s.links.Resolve(strings.TrimSpace(c.Q)); ok {
			return Response{Criteria: c, Redirect: href}, nil
		}
	}

	resp, err := s.Search(ctx, c)
	if err != nil {
		return Response{}, err
	}
	if resp.Page.HasNextPage {
		resp.NextHref = s.nextHref(args, resp.Page)
	}
	return resp, nil
}

// Search queries every backend with c and merges the answers. Backend failures
// become warnings, one per failed backend; an empty answer with no failures
// warns that nothing matched. Search itself fails only when ctx is done.
func (s *Service) Search(ctx context.Context, c criteria.Criteria) (Response, error) {
	c.Normalize()
	if c.IsBlank() {
		return s.respond(Response{Criteria: c, Page: emptyPage(c)}), nil
	}

	answers := make([]result.Set, len(s.backends))
	errs := make([]error, len(s.backends))

	var g errgroup.Group
	for i, b := range s.backends {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
			defer cancel()
			answers[i], errs[i] = b.Query(qctx, c)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Response{}, err //nolint:wrapcheck // caller went away
	}

	resp := Response{Criteria: c}
	lists := make([]BackendResults, 0, len(s.backends))
	total := 0
	for i, b := range s.backends {
		if err := errs[i]; err != nil {
			s.logger.Warn("Backend query failed", zap.String("backend", b.Name()), zap.Error(err))
			resp.Warnings = append(resp.Warnings, queryWarning(b.Name(), err))
			continue
		}
		total += answers[i].Total
		lists = append(lists, BackendResults{Backend: b.Name(), Items: answers[i].Items})
	}

	page := emptyPage(c)
	if total > 0 {
		page.Items = s.withHrefs(Merge(lists, c.PerPage))
		page.TotalCount = total
		page.HasNextPage = c.Page*c.PerPage < total
		page.HasPreviousPage = c.Page > 1
		if page.HasNextPage {
			page.StartPoints = FormatStartPoints(page.Items, c.StartPoints)
		}
	}
	metrics.SearchPageSize.Observe(float64(len(page.Items)))

	resp.Page = page
	if page.IsEmpty() && len(resp.Warnings) == 0 {
		resp.Warnings = append(resp.Warnings, WarnNoResults)
	}
	return s.respond(resp), nil
}

// respond adds the registry warning.
func (s *Service) respond(resp Response) Response {
	if len(s.backends) == 0 {
		resp.Warnings = append([]string{WarnNoBackends}, resp.Warnings...)
	}
	return resp
}

func emptyPage(c criteria.Criteria) result.Page {
	return result.Page{PageNumber: c.Page, PerPage: c.PerPage, StartPoints: c.StartPoints}
}

func queryWarning(backend string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Search backend " + backend + " timed out"
	}
	var be *domain.BackendError
	if errors.As(err, &be) {
		return "Search backend error: " + be.Error()
	}
	return "Search backend error: " + backend + ": " + err.Error()
}

// withHrefs links wiki results to their page and ticket results to their ticket.
func (s *Service) withHrefs(items []result.Result) []result.Result {
	for i := range items {
		switch document.Source(items[i].Source()) {
		case document.SourceWiki:
			items[i] = items[i].WithHref(s.cfg.BaseURL + document.WikiPath(items[i].Title()))
		case document.SourceTicket:
			if id := items[i].TicketID(); id > 0 {
				items[i] = items[i].WithHref(s.cfg.BaseURL + document.TicketPath(id))
			}
		}
	}
	return items
}

// nextHref keeps the request arguments, bumps the page and replaces the cursors.
func (s *Service) nextHref(args url.Values, page result.Page) string {
	next := url.Values{}
	for k, v := range args {
		if strings.HasPrefix(k, StartPointPrefix) || k == "page" {
			continue
		}
		next[k] = v
	}
	for k, v := range StartPointsQuery(page.StartPoints) {
		next[k] = v
	}
	next.Set("page", strconv.Itoa(page.PageNumber+1))
	return s.cfg.BaseURL + "/advsearch?" + next.Encode()
}
