package search

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

// StartPointPrefix prefixes the request argument carrying a backend's cursor.
const StartPointPrefix = "provider_start_point:"

// StartPointKey returns the request argument name of the named backend's cursor.
func StartPointKey(backend string) string {
	return StartPointPrefix + backend
}

// ParseStartPoints reads the cursor of every named backend from args.
// Absent, unparseable or negative cursors are 0.
func ParseStartPoints(args url.Values, backends []string) map[string]int {
	sp := make(map[string]int, len(backends))
	for _, name := range backends {
		sp[name] = parseCursor(args.Get(StartPointKey(name)))
	}
	return sp
}

// FormatStartPoints folds one page of merged results onto the previous cursors.
// A backend's cursor grows by the number of its results on the page; backends
// absent from the page keep their previous cursor.
func FormatStartPoints(items []result.Result, prev map[string]int) map[string]int {
	next := make(map[string]int, len(prev))
	for name, v := range prev {
		if v < 0 {
			v = 0
		}
		next[name] = v
	}
	for i := range items {
		next[items[i].BackendName()]++
	}
	return next
}

// StartPointsQuery renders cursors as request arguments for the next-page link.
func StartPointsQuery(sp map[string]int) url.Values {
	v := make(url.Values, len(sp))
	for name, n := range sp {
		v.Set(StartPointKey(name), strconv.Itoa(n))
	}
	return v
}

type startPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EncodeStartPoints serializes cursors as a JSON list of {name, value} pairs
// sorted by name, with names in request argument form.
func EncodeStartPoints(sp map[string]int) (string, error) {
	names := make([]string, 0, len(sp))
	for name := range sp {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]startPoint, 0, len(names))
	for _, name := range names {
		list = append(list, startPoint{Name: StartPointKey(name), Value: sp[name]})
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode start points: %w", err)
	}
	return string(b), nil
}

// DecodeStartPoints parses the output of EncodeStartPoints.
func DecodeStartPoints(s string) (map[string]int, error) {
	var list []startPoint
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, fmt.Errorf("decode start points: %w", err)
	}
	sp := make(map[string]int, len(list))
	for _, p := range list {
		name, ok := strings.CutPrefix(p.Name, StartPointPrefix)
		if !ok || name == "" {
			return nil, fmt.Errorf("decode start points: unexpected name %q", p.Name)
		}
		if p.Value < 0 {
			p.Value = 0
		}
		sp[name] = p.Value
	}
	return sp, nil
}

func parseCursor(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
