package bleve

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

// nameBoost ranks matches in the page name or ticket summary above body matches.
const nameBoost = 2.0

// Build translates criteria into a bleve query tree.
func Build(c criteria.Criteria, logger *zap.Logger) query.Query {
	sources := c.ActiveSources()
	if len(sources) == 0 {
		sources = []string{string(document.SourceWiki), string(document.SourceTicket)}
	}
	must := []query.Query{anyOf(document.FieldSource, sources)}

	if len(c.Authors) > 0 {
		must = append(must, anyOf(document.FieldAuthor, c.Authors))
	}
	if q := dateRange(c, logger); q != nil {
		must = append(must, q)
	}

	// Status filters restrict tickets only.
	wiki := term(document.FieldSource, string(document.SourceWiki))
	if statuses := c.ActiveStatuses(); len(statuses) > 0 {
		must = append(must, bleve.NewDisjunctionQuery(anyOf(document.FieldStatus, statuses), wiki))
	} else {
		must = append(must, wiki)
	}

	if text := strings.TrimSpace(c.Q); text != "" {
		name := bleve.NewMatchQuery(text)
		name.SetField(document.FieldName)
		name.SetBoost(nameBoost)

		body := bleve.NewMatchQuery(text)
		body.SetField(document.FieldText)

		must = append(must, bleve.NewDisjunctionQuery(name, body))
	}

	return bleve.NewConjunctionQuery(must...)
}

func term(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

func anyOf(field string, values []string) query.Query {
	qs := make([]query.Query, 0, len(values))
	for _, v := range values {
		qs = append(qs, term(field, v))
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// dateRange returns an inclusive range on time, or nil when both bounds are open.
func dateRange(c criteria.Criteria, logger *zap.Logger) query.Query {
	if !c.HasDateRange() {
		return nil
	}
	from, to, invalid := c.Range()
	for _, raw := range invalid {
		logger.Warn("Invalid date format", zap.String("date", raw))
	}
	if from.IsZero() && to.IsZero() {
		return nil
	}
	inclusive := true
	q := bleve.NewDateRangeInclusiveQuery(from, to, &inclusive, &inclusive)
	q.SetField(document.FieldTime)
	return q
}
