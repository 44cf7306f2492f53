package criteria

import (
	"testing"
	"time"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty", Criteria{}, true},
		{"whitespace query", Criteria{Q: "   "}, true},
		{"query", Criteria{Q: "trac"}, false},
		{"author", Criteria{Authors: []string{"admin"}}, false},
		{"date start", Criteria{DateStart: "Wed Apr 20 2011"}, false},
		{"date end", Criteria{DateEnd: "Wed Apr 20 2011"}, false},
		{"filters only", Criteria{Sources: []Filter{{Name: "wiki", Active: true}}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.IsBlank(); got != tc.want {
				t.Errorf("IsBlank() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParsePerPage(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"", 15, true},
		{"25", 25, true},
		{"abc", 15, false},
		{"0", 15, false},
		{"-3", 15, false},
		{" 10 ", 10, true},
	}
	for _, tc := range tests {
		got, ok := ParsePerPage(tc.raw, DefaultPerPage)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParsePerPage(%q) = (%d, %v), want (%d, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParsePage(t *testing.T) {
	if got, _ := ParsePage("3"); got != 3 {
		t.Errorf("ParsePage(3) = %d", got)
	}
	if got, ok := ParsePage("x"); got != 1 || ok {
		t.Errorf("ParsePage(x) = (%d, %v)", got, ok)
	}
}

func TestParseSortOrder(t *testing.T) {
	if got := ParseSortOrder("NEWEST"); got != SortNewest {
		t.Errorf("got %q", got)
	}
	if got := ParseSortOrder("oldest"); got != SortOldest {
		t.Errorf("got %q", got)
	}
	if got := ParseSortOrder("random"); got != SortRelevance {
		t.Errorf("got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	c := Criteria{
		PerPage:   1000,
		Page:      -1,
		SortOrder: "bogus",
		Authors:   []string{"", "admin", "  "},
	}
	c.Normalize()

	if c.PerPage != MaxPerPage {
		t.Errorf("PerPage = %d", c.PerPage)
	}
	if c.Page != DefaultPage {
		t.Errorf("Page = %d", c.Page)
	}
	if c.SortOrder != SortRelevance {
		t.Errorf("SortOrder = %q", c.SortOrder)
	}
	if len(c.Authors) != 1 || c.Authors[0] != "admin" {
		t.Errorf("Authors = %v", c.Authors)
	}
	if c.StartPoints == nil {
		t.Error("StartPoints should be initialized")
	}
}

func TestActiveFilters(t *testing.T) {
	c := Criteria{
		Sources:        []Filter{{Name: "wiki", Active: true}, {Name: "ticket"}},
		TicketStatuses: []Filter{{Name: "new", Active: true}, {Name: "closed", Active: true}},
	}
	if got := c.ActiveSources(); len(got) != 1 || got[0] != "wiki" {
		t.Errorf("ActiveSources() = %v", got)
	}
	if got := c.ActiveStatuses(); len(got) != 2 {
		t.Errorf("ActiveStatuses() = %v", got)
	}
}

func TestStartPoint(t *testing.T) {
	c := Criteria{StartPoints: map[string]int{"solr": 12, "bad": -4}}
	if got := c.StartPoint("solr"); got != 12 {
		t.Errorf("StartPoint(solr) = %d", got)
	}
	if got := c.StartPoint("bad"); got != 0 {
		t.Errorf("StartPoint(bad) = %d", got)
	}
	if got := c.StartPoint("missing"); got != 0 {
		t.Errorf("StartPoint(missing) = %d", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("Wed Apr 20 2011")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(time.Date(2011, 4, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDate = %v", d)
	}
	if FormatDate(d) != "Wed Apr 20 2011" {
		t.Errorf("FormatDate = %q", FormatDate(d))
	}
	if _, err := ParseDate("2011-04-20"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestRange(t *testing.T) {
	c := Criteria{DateStart: "Wed Apr 20 2011", DateEnd: "Fri Apr 22 2011"}
	from, to, invalid := c.Range()
	if len(invalid) != 0 {
		t.Fatalf("invalid = %v", invalid)
	}
	if !from.Equal(time.Date(2011, 4, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(time.Date(2011, 4, 22, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("to = %v", to)
	}

	c = Criteria{DateStart: "yesterday"}
	from, to, invalid = c.Range()
	if !from.IsZero() || !to.IsZero() {
		t.Errorf("expected open bounds, got %v..%v", from, to)
	}
	if len(invalid) != 1 || invalid[0] != "yesterday" {
		t.Errorf("invalid = %v", invalid)
	}
	if !c.HasDateRange() {
		t.Error("HasDateRange() = false")
	}
}
