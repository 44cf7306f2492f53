package redisearch

import (
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/db"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

func TestBuild_Defaults(t *testing.T) {
	q := Build("idx", criteria.Criteria{PerPage: 15}, 0, zap.NewNop())

	if q.Query != `@source:{wiki | ticket} @source:{wiki}` {
		t.Errorf("query = %q", q.Query)
	}
	if q.Offset != 0 || q.Limit != 15 || !q.WithScores {
		t.Errorf("paging = %+v", q)
	}
	if q.SortBy != "" {
		t.Errorf("relevance must not sort, got %q", q.SortBy)
	}
}

func TestBuild_ReturnsResultFields(t *testing.T) {
	q := Build("idx", criteria.Criteria{Q: "crash", PerPage: 15}, 0, zap.NewNop())

	for _, f := range []string{"id", "source", "name", "text", "time", "author", "ticket_id"} {
		if !slices.Contains(q.ReturnFields, f) {
			t.Errorf("ReturnFields %v missing %q", q.ReturnFields, f)
		}
	}
	if slices.Contains(q.ReturnFields, "keywords") {
		t.Errorf("ReturnFields %v must not carry unused fields", q.ReturnFields)
	}
}

func TestBuild_AllFields(t *testing.T) {
	c := criteria.Criteria{
		Q:              "crash on-save",
		Authors:        []string{"joe", "ann.lee"},
		DateStart:      "Wed Apr 20 2011",
		Sources:        []criteria.Filter{{Name: "ticket", Active: true}},
		TicketStatuses: []criteria.Filter{{Name: "new", Active: true}, {Name: "closed"}},
		PerPage:        10,
		SortOrder:      criteria.SortOldest,
	}

	q := Build("idx", c, 20, zap.NewNop())

	want := `@source:{ticket} @author:{joe | ann\.lee} @time:[1303257600 +inf] ` +
		`(@status:{new} | @source:{wiki}) (crash on\-save)`
	if q.Query != want {
		t.Errorf("query =\n %q\nwant\n %q", q.Query, want)
	}
	if q.Offset != 20 || q.Limit != 10 {
		t.Errorf("paging = %d/%d", q.Offset, q.Limit)
	}
	if q.SortBy != "time" || q.SortDir != db.SortAsc {
		t.Errorf("sort = %s %s", q.SortBy, q.SortDir)
	}
}

func TestBuild_MalformedDateIsOpen(t *testing.T) {
	c := criteria.Criteria{DateEnd: "tomorrow", SortOrder: criteria.SortNewest}

	q := Build("idx", c, 0, zap.NewNop())

	want := `@source:{wiki | ticket} @time:[-inf +inf] @source:{wiki}`
	if q.Query != want {
		t.Errorf("query = %q, want %q", q.Query, want)
	}
	if q.SortDir != db.SortDesc {
		t.Errorf("sort dir = %s", q.SortDir)
	}
}

func TestTagEscaping(t *testing.T) {
	if got := tagGroup("author", []string{"a b", "x|y"}); got != `@author:{a\ b | x\|y}` {
		t.Errorf("tagGroup = %q", got)
	}
}
