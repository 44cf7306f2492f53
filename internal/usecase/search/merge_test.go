package search

import (
	"testing"

	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

func TestMerge_SortedAndTruncated(t *testing.T) {
	lists := []BackendResults{
		{Backend: "a", Items: []result.Result{wiki("a1", 0.5), wiki("a2", 0.1)}},
		{Backend: "b", Items: []result.Result{wiki("b1", 0.9), wiki("b2", 0.3)}},
	}

	got := Merge(lists, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	want := []string{"b1", "a1", "b2"}
	for i, title := range want {
		if got[i].Title() != title {
			t.Errorf("position %d: got %s, want %s", i, got[i].Title(), title)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score() > got[i-1].Score() {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestMerge_TagsBackend(t *testing.T) {
	got := Merge([]BackendResults{{Backend: "solr", Items: []result.Result{wiki("x", 1)}}}, 10)
	if got[0].BackendName() != "solr" {
		t.Errorf("BackendName() = %q", got[0].BackendName())
	}
}

func TestMerge_StableTies(t *testing.T) {
	lists := []BackendResults{
		{Backend: "a", Items: []result.Result{wiki("a1", 1), wiki("a2", 1)}},
		{Backend: "b", Items: []result.Result{wiki("b1", 1)}},
	}

	got := Merge(lists, 10)
	want := []string{"a1", "a2", "b1"}
	for i, title := range want {
		if got[i].Title() != title {
			t.Errorf("position %d: got %s, want %s", i, got[i].Title(), title)
		}
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, 15); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
	if got := Merge([]BackendResults{{Backend: "a", Items: []result.Result{wiki("x", 1)}}}, 0); len(got) != 0 {
		t.Errorf("perPage 0 must return nothing, got %d", len(got))
	}
}
