package backend

import (
	"strings"
	"unicode/utf8"
)

// MaxSummaryLen bounds result summaries, ellipses included.
const MaxSummaryLen = 500

const (
	summaryFuzz = 60
	ellipsis    = "..."
)

// Summarize returns an excerpt of text of at most MaxSummaryLen runes. With a
// query the excerpt starts shortly before the first occurrence of any query
// term, preferably at a sentence boundary.
func Summarize(text, query string) string {
	terms := strings.Fields(query)
	runes := []rune(text)
	if len(terms) == 0 {
		return truncate(runes, MaxSummaryLen)
	}
	if len(runes) == 0 {
		return ""
	}

	hit := firstHit(runes, terms)
	begin := 0
	if hit > summaryFuzz {
		begin = excerptStart(runes, hit)
	}

	prefix, suffix := "", ""
	budget := MaxSummaryLen
	if begin > 0 {
		prefix = ellipsis + " "
		budget -= utf8.RuneCountInString(prefix)
	}
	if len(runes)-begin > budget {
		suffix = " " + ellipsis
		budget -= utf8.RuneCountInString(suffix)
	}
	end := min(begin+budget, len(runes))
	return prefix + string(runes[begin:end]) + suffix
}

// firstHit returns the rune offset of the earliest case-insensitive term match, or -1.
func firstHit(runes []rune, terms []string) int {
	lower := []rune(strings.ToLower(string(runes)))
	if len(lower) != len(runes) {
		// Case folding changed the length; match on the original text instead.
		lower = runes
	}
	haystack := string(lower)
	best := -1
	for _, t := range terms {
		i := strings.Index(haystack, strings.ToLower(t))
		if i < 0 {
			continue
		}
		pos := utf8.RuneCountInString(haystack[:i])
		if best < 0 || pos < best {
			best = pos
		}
	}
	return best
}

// excerptStart looks back at most summaryFuzz runes from hit for a separator.
func excerptStart(runes []rune, hit int) int {
	from := hit - summaryFuzz
	for i := from; i < hit-1; i++ {
		switch runes[i] {
		case '.', ':', ';', '=':
			return i + 1
		}
	}
	return from
}

func truncate(runes []rune, n int) string {
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}
