package indexer

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/metrics"
)

// Sync writes every change inline. Failures surface to the caller as
// domain.ErrBackendIndex.
type Sync struct {
	backend   string
	w         Writer
	logger    *zap.Logger
	onApplied func()
}

// NewSync creates a synchronous indexer.
func NewSync(backend string, w Writer, logger *zap.Logger) *Sync {
	return &Sync{backend: backend, w: w, logger: logger}
}

// Upsert writes the document.
func (s *Sync) Upsert(ctx context.Context, doc document.Document) error {
	if err := s.w.Write(ctx, doc); err != nil {
		metrics.IndexerWritesTotal.WithLabelValues(s.backend, opUpsert.String(), "error").Inc()
		s.logger.Error("Index write failed",
			zap.String("backend", s.backend),
			zap.String("doc_id", doc.ID()),
			zap.Error(err),
		)
		return domain.NewIndexError(s.backend, err)
	}
	metrics.IndexerWritesTotal.WithLabelValues(s.backend, opUpsert.String(), "ok").Inc()
	s.applied()
	return nil
}

// Delete removes the document.
func (s *Sync) Delete(ctx context.Context, id string) error {
	if err := s.w.Remove(ctx, id); err != nil {
		metrics.IndexerWritesTotal.WithLabelValues(s.backend, opDelete.String(), "error").Inc()
		s.logger.Error("Index delete failed",
			zap.String("backend", s.backend),
			zap.String("doc_id", id),
			zap.Error(err),
		)
		return domain.NewIndexError(s.backend, err)
	}
	metrics.IndexerWritesTotal.WithLabelValues(s.backend, opDelete.String(), "ok").Inc()
	s.applied()
	return nil
}

func (s *Sync) applied() {
	if s.onApplied != nil {
		s.onApplied()
	}
}

// Close is a no-op.
func (s *Sync) Close() error { return nil }
