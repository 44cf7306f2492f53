// Package listener turns wiki and ticket change events into index writes on
// every registered backend.
package listener

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/logger"
)

// WikiEventKind names a wiki page change.
type WikiEventKind string

// Wiki events.
const (
	WikiCreated        WikiEventKind = "created"
	WikiChanged        WikiEventKind = "changed"
	WikiVersionDeleted WikiEventKind = "version_deleted"
	WikiDeleted        WikiEventKind = "deleted"
	WikiRenamed        WikiEventKind = "renamed"
)

// TicketEventKind names a ticket change.
type TicketEventKind string

// Ticket events.
const (
	TicketCreated         TicketEventKind = "created"
	TicketChanged         TicketEventKind = "changed"
	TicketDeleted         TicketEventKind = "deleted"
	TicketCommentModified TicketEventKind = "comment_modified"
	TicketChangeDeleted   TicketEventKind = "change_deleted"
)

// WikiEvent carries the page state after the change. OldName is set for renames.
type WikiEvent struct {
	Kind    WikiEventKind     `json:"event"`
	Page    document.WikiPage `json:"page"`
	OldName string            `json:"old_name,omitempty"`
}

// TicketEvent carries the ticket state after the change, comments included.
type TicketEvent struct {
	Kind   TicketEventKind `json:"event"`
	Ticket document.Ticket `json:"ticket"`
}

// Service fans change events out to every backend. Index failures are logged
// per backend and never fail the event.
type Service struct {
	backends []Backend
	logger   *zap.Logger
}

// New creates a change listener over the given backends.
func New(backends []Backend, logger *zap.Logger) *Service {
	return &Service{backends: backends, logger: logger}
}

// WikiChanged applies a wiki event. Only a malformed event is an error.
func (s *Service) WikiChanged(ctx context.Context, ev WikiEvent) error {
	switch ev.Kind {
	case WikiCreated, WikiChanged, WikiVersionDeleted:
		return s.upsertWiki(ctx, ev.Page)
	case WikiDeleted:
		if strings.TrimSpace(ev.Page.Name) == "" {
			return fmt.Errorf("%w: wiki page name is required", domain.ErrInvalidEvent)
		}
		s.delete(ctx, document.IDFor(document.SourceWiki, ev.Page.Name))
		return nil
	case WikiRenamed:
		if strings.TrimSpace(ev.OldName) == "" {
			return fmt.Errorf("%w: old_name is required for renames", domain.ErrInvalidEvent)
		}
		doc, err := document.NewWikiPage(ev.Page)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidEvent, err)
		}
		s.delete(ctx, document.IDFor(document.SourceWiki, ev.OldName))
		s.upsert(ctx, doc)
		return nil
	default:
		return fmt.Errorf("%w: unknown wiki event %q", domain.ErrInvalidEvent, ev.Kind)
	}
}

// TicketChanged applies a ticket event. Every change re-indexes the whole
// ticket so comment edits and deleted changes are reflected.
func (s *Service) TicketChanged(ctx context.Context, ev TicketEvent) error {
	switch ev.Kind {
	case TicketCreated, TicketChanged, TicketCommentModified, TicketChangeDeleted:
		doc, err := document.NewTicket(ev.Ticket)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidEvent, err)
		}
		s.upsert(ctx, doc)
		return nil
	case TicketDeleted:
		if ev.Ticket.ID <= 0 {
			return fmt.Errorf("%w: ticket id must be positive", domain.ErrInvalidEvent)
		}
		s.delete(ctx, document.IDFor(document.SourceTicket, document.TicketKey(ev.Ticket.ID)))
		return nil
	default:
		return fmt.Errorf("%w: unknown ticket event %q", domain.ErrInvalidEvent, ev.Kind)
	}
}

func (s *Service) upsertWiki(ctx context.Context, p document.WikiPage) error {
	doc, err := document.NewWikiPage(p)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidEvent, err)
	}
	s.upsert(ctx, doc)
	return nil
}

func (s *Service) upsert(ctx context.Context, doc document.Document) {
	log := logger.FromContext(ctx, s.logger)
	for _, b := range s.backends {
		if err := b.Upsert(ctx, doc); err != nil {
			log.Error("Upsert failed",
				zap.String("backend", b.Name()),
				zap.String("doc_id", doc.ID()),
				zap.Error(err))
		}
	}
}

func (s *Service) delete(ctx context.Context, id string) {
	log := logger.FromContext(ctx, s.logger)
	for _, b := range s.backends {
		if err := b.Delete(ctx, id); err != nil {
			log.Error("Delete failed",
				zap.String("backend", b.Name()),
				zap.String("doc_id", id),
				zap.Error(err))
		}
	}
}
