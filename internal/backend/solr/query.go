package solr

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

// DateLayout is the Solr date representation.
const DateLayout = "2006-01-02T15:04:05Z"

// Fixed edismax parameters: phrases in the body and exact matches in the name rank higher.
const (
	fieldList     = "*,score"
	queryFields   = "token_text name^2 ticket_id component milestone keywords"
	phraseFields  = "token_text name^2 ticket_id"
	defaultSource = `("wiki" OR "ticket")`
	matchAll      = "*:*"
)

// Build translates criteria into a Solr query string and request parameters.
// start is the number of this backend's results already shown.
func Build(c criteria.Criteria, start int, logger *zap.Logger) (string, url.Values) {
	params := url.Values{}
	params.Set("wt", "json")
	params.Set("fl", fieldList)
	params.Set("defType", "edismax")
	params.Set("qf", queryFields)
	params.Set("pf", phraseFields)
	params.Set("rows", strconv.Itoa(c.PerPage))
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	switch c.SortOrder {
	case criteria.SortOldest:
		params.Set("sort", "time asc")
	case criteria.SortNewest:
		params.Set("sort", "time desc")
	}

	var parts []string
	source := orGroup(c.ActiveSources())
	if source == "" {
		source = defaultSource
	}
	parts = append(parts, "source:"+source)
	if authors := orGroup(c.Authors); authors != "" {
		parts = append(parts, "author:"+authors)
	}
	if r := dateRange(c, logger); r != "" {
		parts = append(parts, "time:"+r)
	}

	// Status filters restrict tickets only.
	if statuses := orGroup(c.ActiveStatuses()); statuses != "" {
		params.Set("fq", `(status:`+statuses+` OR source:"wiki")`)
	} else {
		params.Set("fq", `source:"wiki"`)
	}

	// edismax escapes the free text itself.
	if q := strings.TrimSpace(c.Q); q != "" {
		parts = append(parts, "("+q+")")
	} else {
		parts = append(parts, matchAll)
	}
	return strings.Join(parts, " AND "), params
}

// orGroup renders values as ("a" OR "b"), or "" for no values.
func orGroup(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		quoted = append(quoted, quote(v))
	}
	if len(quoted) == 0 {
		return ""
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

func quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}

// dateRange renders [from TO to] with * for open or malformed bounds.
func dateRange(c criteria.Criteria, logger *zap.Logger) string {
	if !c.HasDateRange() {
		return ""
	}
	from, to, invalid := c.Range()
	for _, raw := range invalid {
		logger.Warn("Invalid date format", zap.String("date", raw))
	}
	return "[" + formatBound(from) + " TO " + formatBound(to) + "]"
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.UTC().Format(DateLayout)
}
