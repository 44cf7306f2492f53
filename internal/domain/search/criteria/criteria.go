package criteria

import (
	"strconv"
	"strings"
	"time"
)

// Paging limits.
const (
	DefaultPerPage = 15
	DefaultPage    = 1
	MaxPerPage     = 200
)

// InputDateLayout is the date representation used by clients for date_start/date_end
// and by results for their date.
const InputDateLayout = "Mon Jan 02 2006"

// SortOrder selects result ordering.
type SortOrder string

// Sort orders.
const (
	SortRelevance SortOrder = "relevance"
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
)

// IsValid checks if the order is one of the supported values.
func (o SortOrder) IsValid() bool {
	return o == SortRelevance || o == SortNewest || o == SortOldest
}

// Filter is a named on/off toggle (source filter or ticket status).
type Filter struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Criteria is the normalized query passed to every backend.
type Criteria struct {
	Q              string
	Authors        []string
	DateStart      string
	DateEnd        string
	Sources        []Filter
	TicketStatuses []Filter
	PerPage        int
	Page           int
	SortOrder      SortOrder
	StartPoints    map[string]int
}

// IsBlank reports whether the criteria carry no text, author or date constraint.
// A blank criteria is the initial form state and is never sent to backends.
func (c *Criteria) IsBlank() bool {
	return strings.TrimSpace(c.Q) == "" &&
		len(c.Authors) == 0 &&
		c.DateStart == "" &&
		c.DateEnd == ""
}

// ActiveSources returns the names of active source filters.
func (c *Criteria) ActiveSources() []string {
	return activeNames(c.Sources)
}

// ActiveStatuses returns the names of active ticket status filters.
func (c *Criteria) ActiveStatuses() []string {
	return activeNames(c.TicketStatuses)
}

// StartPoint returns the number of results of the named backend already consumed.
func (c *Criteria) StartPoint(backend string) int {
	if v := c.StartPoints[backend]; v > 0 {
		return v
	}
	return 0
}

// Range resolves the date bounds. An empty or unparseable bound is open and
// returned as the zero time; unparseable raw values are listed in invalid.
// The end bound covers the whole end day.
func (c *Criteria) Range() (from, to time.Time, invalid []string) {
	if raw := strings.TrimSpace(c.DateStart); raw != "" {
		if d, err := ParseDate(raw); err == nil {
			from = d
		} else {
			invalid = append(invalid, raw)
		}
	}
	if raw := strings.TrimSpace(c.DateEnd); raw != "" {
		if d, err := ParseDate(raw); err == nil {
			to = d.Add(24*time.Hour - time.Second)
		} else {
			invalid = append(invalid, raw)
		}
	}
	return from, to, invalid
}

// HasDateRange reports whether either date bound was supplied.
func (c *Criteria) HasDateRange() bool {
	return strings.TrimSpace(c.DateStart) != "" || strings.TrimSpace(c.DateEnd) != ""
}

// Normalize replaces out-of-range paging values and unknown sort orders with defaults.
func (c *Criteria) Normalize() {
	if c.PerPage <= 0 {
		c.PerPage = DefaultPerPage
	}
	if c.PerPage > MaxPerPage {
		c.PerPage = MaxPerPage
	}
	if c.Page <= 0 {
		c.Page = DefaultPage
	}
	if !c.SortOrder.IsValid() {
		c.SortOrder = SortRelevance
	}
	c.Authors = nonEmpty(c.Authors)
	if c.StartPoints == nil {
		c.StartPoints = map[string]int{}
	}
}

// ParsePerPage parses a per_page argument, falling back to def on any parse failure.
func ParsePerPage(raw string, def int) (int, bool) {
	return parsePositive(raw, def)
}

// ParsePage parses a page argument, falling back to DefaultPage on any parse failure.
func ParsePage(raw string) (int, bool) {
	return parsePositive(raw, DefaultPage)
}

// ParseSortOrder parses a sort_order argument, falling back to relevance.
func ParseSortOrder(raw string) SortOrder {
	o := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	if !o.IsValid() {
		return SortRelevance
	}
	return o
}

// ParseDate parses a client-supplied date in InputDateLayout.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(InputDateLayout, strings.TrimSpace(raw))
}

// FormatDate renders t in InputDateLayout.
func FormatDate(t time.Time) string {
	return t.Format(InputDateLayout)
}

// parsePositive returns (value, true) for a positive integer, or (def, false) otherwise.
// An empty string returns (def, true): absence is not a parse failure.
func parsePositive(raw string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def, false
	}
	return n, true
}

func activeNames(filters []Filter) []string {
	var names []string
	for _, f := range filters {
		if f.Active && f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
