package redisearch

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/db"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

var defaultSources = []string{string(document.SourceWiki), string(document.SourceTicket)}

// returnFields are the hash fields a result is built from.
var returnFields = []string{
	document.FieldID,
	document.FieldSource,
	document.FieldName,
	document.FieldText,
	document.FieldTime,
	document.FieldAuthor,
	document.FieldTicketID,
}

// Build translates criteria into an FT.SEARCH query. start is the number of
// this backend's results already shown.
func Build(index string, c criteria.Criteria, start int, logger *zap.Logger) *db.Query {
	var parts []string

	sources := c.ActiveSources()
	if len(sources) == 0 {
		sources = defaultSources
	}
	parts = append(parts, tagGroup(document.FieldSource, sources))

	if len(c.Authors) > 0 {
		parts = append(parts, tagGroup(document.FieldAuthor, c.Authors))
	}
	if r := timeRange(c, logger); r != "" {
		parts = append(parts, r)
	}

	// Status filters restrict tickets only.
	wiki := tagGroup(document.FieldSource, []string{string(document.SourceWiki)})
	if statuses := c.ActiveStatuses(); len(statuses) > 0 {
		parts = append(parts, "("+tagGroup(document.FieldStatus, statuses)+" | "+wiki+")")
	} else {
		parts = append(parts, wiki)
	}

	if terms := textTerms(c.Q); terms != "" {
		parts = append(parts, "("+terms+")")
	}

	q := &db.Query{
		Index:        index,
		Query:        strings.Join(parts, " "),
		Offset:       start,
		Limit:        c.PerPage,
		WithScores:   true,
		ReturnFields: returnFields,
	}
	switch c.SortOrder {
	case criteria.SortOldest:
		q.SortBy, q.SortDir = document.FieldTime, db.SortAsc
	case criteria.SortNewest:
		q.SortBy, q.SortDir = document.FieldTime, db.SortDesc
	}
	return q
}

// tagGroup renders @field:{a | b} with escaped values.
func tagGroup(field string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return "@" + field + ":{" + strings.Join(escaped, " | ") + "}"
}

// timeRange renders @time:[from to] over unix seconds, with infinite open bounds.
func timeRange(c criteria.Criteria, logger *zap.Logger) string {
	if !c.HasDateRange() {
		return ""
	}
	from, to, invalid := c.Range()
	for _, raw := range invalid {
		logger.Warn("Invalid date format", zap.String("date", raw))
	}
	lo, hi := "-inf", "+inf"
	if !from.IsZero() {
		lo = strconv.FormatInt(from.Unix(), 10)
	}
	if !to.IsZero() {
		hi = strconv.FormatInt(to.Unix(), 10)
	}
	return "@" + document.FieldTime + ":[" + lo + " " + hi + "]"
}

// textTerms escapes free text word by word; words are ANDed and matched across all TEXT fields.
func textTerms(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = queryEscaper.Replace(w)
	}
	return strings.Join(words, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
)
