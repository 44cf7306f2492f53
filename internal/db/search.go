package db

// SortDirection orders SORTBY results.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Query is the input for FT.SEARCH. The query string is passed verbatim.
type Query struct {
	Index        string
	Query        string
	Offset       int
	Limit        int
	SortBy       string
	SortDir      SortDirection
	WithScores   bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
