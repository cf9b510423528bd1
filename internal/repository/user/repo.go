package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kailas-cloud/matchfeed/internal/db"
	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
	"github.com/kailas-cloud/matchfeed/internal/domain/filter"
)

// store is the consumer interface for profiles (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, filters filter.Expression) (int, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores profiles as JSON documents.
type Repo struct {
	store  store
	offset func(n int) int
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s, offset: rand.IntN}
}

// WithOffsetFunc overrides the random window offset (tests).
func (r *Repo) WithOffsetFunc(fn func(n int) int) *Repo {
	r.offset = fn
	return r
}

// Upsert stores the whole profile document. Returns true if it was created.
func (r *Repo) Upsert(ctx context.Context, u *domain.User) (bool, error) {
	key := userKey(u.ID)
	data, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("marshal user: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// Get returns a profile by ID.
func (r *Repo) Get(ctx context.Context, id string) (*domain.User, error) {
	key := userKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}

	u, err := parseRootArray(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// SetDNA persists quiz answers and the derived vector onto an existing profile.
func (r *Repo) SetDNA(ctx context.Context, id string, answers []dna.Category, v dna.Vector) error {
	key := userKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	if answers == nil {
		answers = []dna.Category{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	dnaJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal dna: %w", err)
	}

	if err := r.store.JSONSet(ctx, key, "$.answers", answersJSON); err != nil {
		return fmt.Errorf("json.set %s answers: %w", key, err)
	}
	if err := r.store.JSONSet(ctx, key, "$.dna", dnaJSON); err != nil {
		return fmt.Errorf("json.set %s dna: %w", key, err)
	}
	return nil
}

// IDs lists every stored profile ID.
func (r *Repo) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id := strings.TrimPrefix(k, keyPrefix); id != "" && id != k {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseRootArray decodes a JSON.GET "$" reply, which wraps the document in an array.
func parseRootArray(raw []byte) (*domain.User, error) {
	var docs []domain.User
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}
