package listener

import (
	"context"

	"github.com/kailas-cloud/advsearch/internal/domain/document"
)

// Backend is the write side of a registered search engine.
type Backend interface {
	Name() string
	Upsert(ctx context.Context, doc document.Document) error
	Delete(ctx context.Context, id string) error
}
