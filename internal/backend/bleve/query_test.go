package bleve

import (
	"testing"

	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

func TestBuild_Shape(t *testing.T) {
	tests := []struct {
		name      string
		c         criteria.Criteria
		wantParts int
	}{
		{"match all", criteria.Criteria{}, 2},
		{"text", criteria.Criteria{Q: "crash"}, 3},
		{"author and date", criteria.Criteria{Authors: []string{"joe"}, DateEnd: "Wed Apr 20 2011"}, 4},
		{"malformed dates are dropped", criteria.Criteria{DateStart: "soon", DateEnd: "later"}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, ok := Build(tc.c, zap.NewNop()).(*query.ConjunctionQuery)
			if !ok {
				t.Fatal("expected a conjunction query")
			}
			if len(q.Conjuncts) != tc.wantParts {
				t.Errorf("conjuncts = %d, want %d", len(q.Conjuncts), tc.wantParts)
			}
		})
	}
}

func TestBuild_TextBoostsName(t *testing.T) {
	q := Build(criteria.Criteria{Q: "crash"}, zap.NewNop()).(*query.ConjunctionQuery)

	text, ok := q.Conjuncts[len(q.Conjuncts)-1].(*query.DisjunctionQuery)
	if !ok || len(text.Disjuncts) != 2 {
		t.Fatalf("text clause = %#v", q.Conjuncts[len(q.Conjuncts)-1])
	}
	name := text.Disjuncts[0].(*query.MatchQuery)
	if name.FieldVal != "name" || name.BoostVal == nil || float64(*name.BoostVal) != nameBoost {
		t.Errorf("name clause = %+v", name)
	}
}
