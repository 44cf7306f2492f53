package result

// Result is a single search hit in canonical shape.
type Result struct {
	id       string
	score    float64
	source   string
	title    string
	summary  string
	date     string
	author   string
	ticketID int
	href     string
	backend  string
}

// New creates a search result.
func New(id string, score float64, source, title, summary, date, author string) Result {
	return Result{
		id: id, score: score, source: source,
		title: title, summary: summary, date: date, author: author,
	}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Score returns the backend relevance score. Scales differ between backends.
func (r *Result) Score() float64 { return r.score }

// Source returns the document source (wiki, ticket, ...).
func (r *Result) Source() string { return r.source }

// Title returns the page name or ticket summary.
func (r *Result) Title() string { return r.title }

// Summary returns the bounded body snippet.
func (r *Result) Summary() string { return r.summary }

// Date returns the document date in the input date layout.
func (r *Result) Date() string { return r.date }

// Author returns the document author.
func (r *Result) Author() string { return r.author }

// TicketID returns the ticket number, 0 for non-ticket results.
func (r *Result) TicketID() int { return r.ticketID }

// Href returns the navigable link of the document.
func (r *Result) Href() string { return r.href }

// BackendName returns the name of the backend that produced the result.
func (r *Result) BackendName() string { return r.backend }

// WithTicketID returns a copy carrying the ticket number.
func (r Result) WithTicketID(id int) Result {
	r.ticketID = id
	return r
}

// WithBackend returns a copy tagged with the originating backend.
func (r Result) WithBackend(name string) Result {
	r.backend = name
	return r
}

// WithHref returns a copy carrying a navigable link.
func (r Result) WithHref(href string) Result {
	r.href = href
	return r
}

// Set is one backend's answer to a query: a bounded result list plus the total hit count.
type Set struct {
	Total int
	Items []Result
}

// Page is one bounded, ranked slice of aggregated results plus pagination metadata.
type Page struct {
	Items           []Result
	TotalCount      int
	PageNumber      int
	PerPage         int
	HasNextPage     bool
	HasPreviousPage bool
	StartPoints     map[string]int
}

// IsEmpty reports whether the page holds no items.
func (p *Page) IsEmpty() bool { return len(p.Items) == 0 }
