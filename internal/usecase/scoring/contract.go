package scoring

import (
	"context"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// UserReader loads profiles.
type UserReader interface {
	Get(ctx context.Context, id string) (*domain.User, error)
}

// ScoreCache caches pairwise scores keyed by both users' fingerprints.
type ScoreCache interface {
	Score(ctx context.Context, aID, aFingerprint, bID, bFingerprint string) (int, bool)
	PutScore(ctx context.Context, aID, aFingerprint, bID, bFingerprint string, score int)
}
