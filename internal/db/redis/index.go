package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

// CreateIndex runs FT.CREATE ... ON JSON for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index %q: %w", def.Name, err)
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(createArgs(def)...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index. Indexed documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes an index via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// createArgs renders FT.CREATE arguments. def must be valid.
func createArgs(def *db.IndexDefinition) []string {
	args := make([]string, 0, 6+len(def.Prefixes)+5*len(def.Fields))
	args = append(args, def.Name, "ON", "JSON")
	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for _, f := range def.Fields {
		args = append(args, f.Path, "AS", f.Alias)
		switch f.Type {
		case db.IndexFieldNumeric:
			args = append(args, "NUMERIC", "SORTABLE")
		default:
			args = append(args, "TAG")
		}
	}
	return args
}
