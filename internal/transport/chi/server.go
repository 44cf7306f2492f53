// Package chi exposes the search coordinator, change listener and health
// check over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
	"github.com/kailas-cloud/advsearch/internal/logger"
	"github.com/kailas-cloud/advsearch/internal/quickjump"
	healthuc "github.com/kailas-cloud/advsearch/internal/usecase/health"
	listeneruc "github.com/kailas-cloud/advsearch/internal/usecase/listener"
	searchuc "github.com/kailas-cloud/advsearch/internal/usecase/search"
)

// Error codes.
const (
	codeBadRequest       = "bad_request"
	codeUnauthorized     = "unauthorized"
	codePermissionDenied = "permission_denied"
	codeInvalidEvent     = "invalid_event"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the HTTP API.
type Server struct {
	search        *searchuc.Service
	listener      *listeneruc.Service
	health        *healthuc.Service
	links         *quickjump.Resolver
	menuLabel     string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	listener *listeneruc.Service,
	health *healthuc.Service,
	links *quickjump.Resolver,
	menuLabel string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		listener:  listener,
		health:    health,
		links:     links,
		menuLabel: menuLabel,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		permissionHandler,
		sentinelHandler(domain.ErrInvalidEvent, http.StatusBadRequest, codeInvalidEvent),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/advsearch", s.Search)
	r.Post("/events/wiki", s.WikiEvent)
	r.Post("/events/ticket", s.TicketEvent)
	r.Get("/link", s.Link)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type statusFilter struct {
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	FieldName string `json:"field_name"`
}

type resultItem struct {
	Title    string  `json:"title"`
	Href     string  `json:"href,omitempty"`
	Date     string  `json:"date"`
	Author   string  `json:"author"`
	Summary  string  `json:"summary"`
	Source   string  `json:"source"`
	Score    float64 `json:"score"`
	Backend  string  `json:"backend_name"`
	TicketID int     `json:"ticket_id,omitempty"`
}

type resultsPage struct {
	Items           []resultItem `json:"items"`
	TotalCount      int          `json:"total_count"`
	Page            int          `json:"page"`
	PerPage         int          `json:"per_page"`
	HasNextPage     bool         `json:"has_next_page"`
	HasPreviousPage bool         `json:"has_previous_page"`
}

type searchResponse struct {
	Label          string            `json:"label"`
	Source         []criteria.Filter `json:"source"`
	Author         []string          `json:"author"`
	DateStart      string            `json:"date_start"`
	DateEnd        string            `json:"date_end"`
	Q              string            `json:"q"`
	StartPoints    json.RawMessage   `json:"start_points"`
	PerPage        int               `json:"per_page"`
	Page           int               `json:"page"`
	SortOrder      string            `json:"sort_order"`
	TicketStatuses []statusFilter    `json:"ticket_statuses"`
	Results        *resultsPage      `json:"results,omitempty"`
	Warnings       []string          `json:"warnings"`
	NextHref       string            `json:"next_href,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Search handles GET /advsearch.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	if err := require(r, domain.PermSearchView); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.search.Handle(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if resp.Redirect != "" {
		http.Redirect(w, r, resp.Redirect, http.StatusFound)
		return
	}

	out, err := s.searchToResponse(&resp)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// WikiEvent handles POST /events/wiki.
func (s *Server) WikiEvent(w http.ResponseWriter, r *http.Request) {
	if err := require(r, domain.PermIndexWrite); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var ev listeneruc.WikiEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.listener.WikiChanged(r.Context(), ev); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// TicketEvent handles POST /events/ticket.
func (s *Server) TicketEvent(w http.ResponseWriter, r *http.Request) {
	if err := require(r, domain.PermIndexWrite); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var ev listeneruc.TicketEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.listener.TicketChanged(r.Context(), ev); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Link handles GET /link: renders the target of an advsearch: wiki link.
func (s *Server) Link(w http.ResponseWriter, r *http.Request) {
	if err := require(r, domain.PermSearchView); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "target is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"href": s.links.Link(target)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) searchToResponse(resp *searchuc.Response) (searchResponse, error) {
	c := resp.Criteria
	cursors, err := searchuc.EncodeStartPoints(resp.Page.StartPoints)
	if err != nil {
		return searchResponse{}, err //nolint:wrapcheck // already wrapped
	}

	statuses := make([]statusFilter, len(c.TicketStatuses))
	for i, st := range c.TicketStatuses {
		statuses[i] = statusFilter{Name: st.Name, Active: st.Active, FieldName: "status_" + st.Name}
	}

	out := searchResponse{
		Label:          s.menuLabel,
		Source:         c.Sources,
		Author:         c.Authors,
		DateStart:      c.DateStart,
		DateEnd:        c.DateEnd,
		Q:              c.Q,
		StartPoints:    json.RawMessage(cursors),
		PerPage:        c.PerPage,
		Page:           c.Page,
		SortOrder:      string(c.SortOrder),
		TicketStatuses: statuses,
		Warnings:       resp.Warnings,
		NextHref:       resp.NextHref,
	}
	if out.Author == nil {
		out.Author = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if !c.IsBlank() {
		out.Results = pageToResponse(&resp.Page)
	}
	return out, nil
}

func pageToResponse(p *result.Page) *resultsPage {
	items := make([]resultItem, len(p.Items))
	for i := range p.Items {
		items[i] = resultToResponse(&p.Items[i])
	}
	return &resultsPage{
		Items:           items,
		TotalCount:      p.TotalCount,
		Page:            p.PageNumber,
		PerPage:         p.PerPage,
		HasNextPage:     p.HasNextPage,
		HasPreviousPage: p.HasPreviousPage,
	}
}

func resultToResponse(r *result.Result) resultItem {
	return resultItem{
		Title:    r.Title(),
		Href:     r.Href(),
		Date:     r.Date(),
		Author:   r.Author(),
		Summary:  r.Summary(),
		Source:   r.Source(),
		Score:    r.Score(),
		Backend:  r.BackendName(),
		TicketID: r.TicketID(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe error message without exposing internals.
func safeDomainMessage(err error) string {
	var pe *domain.PermissionError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	if errors.Is(err, domain.ErrInvalidEvent) {
		return err.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// permissionHandler answers 403 naming the missing permission.
func permissionHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrPermissionDenied) {
		return false
	}
	writeError(w, http.StatusForbidden, codePermissionDenied, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
