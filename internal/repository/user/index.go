package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/matchfeed/internal/db"
	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// profileIndexVersion is bumped whenever the index schema changes.
const profileIndexVersion = 3

var (
	keyPrefix     = domain.KeyPrefix + "user:"
	indexBase     = domain.KeyPrefix + "users:idx"
	indexName     = db.VersionedIndexName(indexBase, profileIndexVersion)
	previousIndex = db.VersionedIndexName(indexBase, profileIndexVersion-1)
)

// Index field aliases used in sample queries.
const (
	fieldID         = "id"
	fieldCountry    = "country"
	fieldCity       = "city"
	fieldGender     = "gender"
	fieldLookingFor = "looking_for"
	fieldCreatedAt  = "created_at"
)

func buildIndex() *db.IndexDefinition {
	return db.NewIndex(indexName).
		Prefix(keyPrefix).
		Tag("$.id", fieldID).
		Tag("$.location.country", fieldCountry).
		Tag("$.location.city", fieldCity).
		Tag("$.gender", fieldGender).
		Tag("$.looking_for", fieldLookingFor).
		Numeric("$.created_at", fieldCreatedAt).
		MustBuild()
}

// EnsureIndex creates the current profile index if it is missing and
// retires the previous version. Documents are shared between versions.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", indexName, err)
	}
	if exists {
		return nil
	}

	err = r.store.CreateIndex(ctx, buildIndex())
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}

	err = r.store.DropIndex(ctx, previousIndex)
	if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", previousIndex, err)
	}
	return nil
}

func userKey(id string) string {
	return keyPrefix + id
}
