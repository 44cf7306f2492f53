package indexer

import (
	"context"

	"github.com/google/uuid"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
)

type opKind int

const (
	opUpsert opKind = iota
	opDelete
)

func (k opKind) String() string {
	if k == opDelete {
		return "delete"
	}
	return "upsert"
}

// op is one queued index change. id correlates log lines of the same change.
type op struct {
	id       string
	kind     opKind
	doc      document.Document
	docID    string
	attempts int
}

func newUpsert(doc document.Document) op {
	return op{id: uuid.NewString(), kind: opUpsert, doc: doc, docID: doc.ID()}
}

func newDelete(id string) op {
	return op{id: uuid.NewString(), kind: opDelete, docID: id}
}

func (o *op) apply(ctx context.Context, w Writer) error {
	if o.kind == opDelete {
		return w.Remove(ctx, o.docID) //nolint:wrapcheck // caller wraps with backend context
	}
	return w.Write(ctx, o.doc) //nolint:wrapcheck // caller wraps with backend context
}

// stack is a bounded LIFO of failed operations. Owned by the worker goroutine.
type stack struct {
	items []op
	limit int
}

func newStack(limit int) *stack {
	return &stack{limit: limit}
}

// push adds o unless the stack is full.
func (s *stack) push(o op) bool {
	if len(s.items) >= s.limit {
		return false
	}
	s.items = append(s.items, o)
	return true
}

// pop removes the most recently pushed operation.
func (s *stack) pop() (op, bool) {
	if len(s.items) == 0 {
		return op{}, false
	}
	last := len(s.items) - 1
	o := s.items[last]
	s.items[last] = op{}
	s.items = s.items[:last]
	return o, true
}

func (s *stack) len() int { return len(s.items) }
