package chi

import (
	"context"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/compat"
	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
	healthuc "github.com/kailas-cloud/matchfeed/internal/usecase/health"
)

// Profiles reads and writes user profiles.
type Profiles interface {
	Upsert(ctx context.Context, u *domain.User) (bool, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	SubmitAnswers(ctx context.Context, ownerID string, categories []dna.Category) (dna.Vector, error)
}

// Feeds serves candidate pages and swipe batches.
type Feeds interface {
	CandidatesPage(ctx context.Context, ownerID string, view feed.View, page, limit int) (feed.Page, error)
	FeedBatch(ctx context.Context, ownerID string, n int) (feed.Batch, error)
}

// Swipes accepts interactions for asynchronous persistence.
type Swipes interface {
	Record(ctx context.Context, sw domain.Swipe) error
}

// Scorer explains pairwise compatibility.
type Scorer interface {
	Explain(ctx context.Context, ownerID, otherID string) (compat.Detail, error)
}

// RebuildEnqueuer schedules a ranking pool rebuild.
type RebuildEnqueuer interface {
	EnqueueRebuild(ctx context.Context, ownerID string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
