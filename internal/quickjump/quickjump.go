// Package quickjump resolves queries that are themselves links (ticket
// references, wiki links) and renders advsearch: links.
package quickjump

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
)

// Scheme is the link scheme of saved searches.
const Scheme = "advsearch"

var (
	ticketRef = regexp.MustCompile(`^(?:#|ticket:)(\d+)$`)
	reportRef = regexp.MustCompile(`^(?:\{(\d+)\}|report:(\d+))$`)
	// [wiki:Name label] and wiki:Name
	wikiRef      = regexp.MustCompile(`^\[?wiki:([^\s\]]+)(?:\s+[^\]]*)?\]?$`)
	milestoneRef = regexp.MustCompile(`^milestone:(\S+)$`)
)

// Resolver builds links under a base URL.
type Resolver struct {
	base string
}

// New creates a resolver for links under baseURL.
func New(baseURL string) *Resolver {
	return &Resolver{base: strings.TrimRight(baseURL, "/")}
}

// Resolve returns the target of q when q is a ticket, report, milestone, wiki
// or advsearch link. An advsearch link resolves only when it carries a query.
func (r *Resolver) Resolve(q string) (string, bool) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", false
	}
	if m := ticketRef.FindStringSubmatch(q); m != nil {
		return r.base + "/ticket/" + m[1], true
	}
	if m := reportRef.FindStringSubmatch(q); m != nil {
		return r.base + "/report/" + m[1] + m[2], true
	}
	if m := milestoneRef.FindStringSubmatch(q); m != nil {
		return r.base + "/milestone/" + url.PathEscape(m[1]), true
	}
	if m := wikiRef.FindStringSubmatch(q); m != nil {
		return r.base + document.WikiPath(m[1]), true
	}
	if target, ok := strings.CutPrefix(q, Scheme+":"); ok && strings.Contains(target, "?") {
		return r.Link(target), true
	}
	return "", false
}

// Link renders the target of an advsearch: link. A target with a query string
// becomes a search URL; anything else is returned unchanged.
func (r *Resolver) Link(target string) string {
	_, query, found := strings.Cut(target, "?")
	if !found || query == "" {
		return target
	}
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}
	return r.base + "/advsearch?" + strings.ReplaceAll(query, " ", "+")
}
