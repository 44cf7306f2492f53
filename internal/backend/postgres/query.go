package postgres

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

// TableName holds one row per document.
const TableName = "advsearch_documents"

// textConfig is the text search configuration used for both indexing and querying.
const textConfig = "english"

// Build translates criteria into a parameterized SELECT of one page. Every row
// carries the total hit count so one round trip returns both the page and the count.
func Build(c criteria.Criteria, start int, logger *zap.Logger) (string, []any) {
	b := filter(c, logger)

	score := "0::real"
	order := "score DESC, id"
	if b.tsq != "" {
		score = "ts_rank(tsv, " + b.tsq + ")"
	}
	switch c.SortOrder {
	case criteria.SortOldest:
		order = "time ASC NULLS LAST, id"
	case criteria.SortNewest:
		order = "time DESC NULLS LAST, id"
	}

	sql := "SELECT id, source, name, text, author, time, ticket_id, " + score + " AS score, COUNT(*) OVER() AS total" +
		" FROM " + TableName +
		" WHERE " + strings.Join(b.conds, " AND ") +
		" ORDER BY " + order +
		" LIMIT " + b.arg(c.PerPage) + " OFFSET " + b.arg(start)
	return sql, b.args
}

// BuildCount translates criteria into a SELECT COUNT(*) over every match,
// independent of paging.
func BuildCount(c criteria.Criteria, logger *zap.Logger) (string, []any) {
	b := filter(c, logger)
	return "SELECT COUNT(*) FROM " + TableName + " WHERE " + strings.Join(b.conds, " AND "), b.args
}

// filter collects the WHERE conditions shared by the page and count queries.
func filter(c criteria.Criteria, logger *zap.Logger) *builder {
	b := &builder{}

	sources := c.ActiveSources()
	if len(sources) == 0 {
		sources = []string{string(document.SourceWiki), string(document.SourceTicket)}
	}
	b.where("source = ANY(" + b.arg(pq.Array(sources)) + ")")

	if len(c.Authors) > 0 {
		b.where("author = ANY(" + b.arg(pq.Array(c.Authors)) + ")")
	}

	if c.HasDateRange() {
		from, to, invalid := c.Range()
		for _, raw := range invalid {
			logger.Warn("Invalid date format", zap.String("date", raw))
		}
		if !from.IsZero() {
			b.where("time >= " + b.arg(from))
		}
		if !to.IsZero() {
			b.where("time <= " + b.arg(to))
		}
	}

	// Status filters restrict tickets only.
	if statuses := c.ActiveStatuses(); len(statuses) > 0 {
		b.where("(status = ANY(" + b.arg(pq.Array(statuses)) + ") OR source = 'wiki')")
	} else {
		b.where("source = 'wiki'")
	}

	if q := strings.TrimSpace(c.Q); q != "" {
		b.tsq = "plainto_tsquery('" + textConfig + "', " + b.arg(q) + ")"
		b.where("tsv @@ " + b.tsq)
	}
	return b
}

type builder struct {
	conds []string
	args  []any
	tsq   string // text query expression, empty without free text
}

func (b *builder) where(cond string) {
	b.conds = append(b.conds, cond)
}

// arg registers a bind parameter and returns its placeholder.
func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}
