package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/advsearch/internal/db"
)

// Server replies that identify index state.
const (
	replyIndexExists  = "index already exists"
	replyUnknownIndex = "unknown index name"
	replyNoSuchIndex  = "no such index"
)

// CreateIndex runs FT.CREATE for def. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := def.Args()
	if err != nil {
		return fmt.Errorf("index definition: %w", err)
	}

	cmd := s.b().Arbitrary(db.OpCreateIndex).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, replyIndexExists) {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary(db.OpIndexInfo).Args(name).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case isUnknownIndex(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// Redis and Redis Stack word the missing-index reply differently.
func isUnknownIndex(err error) bool {
	return isRedisErr(err, replyUnknownIndex) || isRedisErr(err, replyNoSuchIndex)
}
