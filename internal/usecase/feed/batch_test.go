package feed

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

func fastConfig() Config {
	return Config{Wait: 50 * time.Millisecond, PollInterval: 2 * time.Millisecond}
}

func TestFeedBatch_ShortListReturnsWhatIsThereAndRefills(t *testing.T) {
	f := newFixture(t, fastConfig())
	f.list.items = []string{"a", "b", "c"}

	b, err := f.svc.FeedBatch(context.Background(), "owner", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != feed.StatusOK || !slices.Equal(b.IDs, []string{"a", "b", "c"}) {
		t.Errorf("unexpected batch: %+v", b)
	}
	if f.refills.count() != 1 {
		t.Errorf("expected refill enqueued, got %d", f.refills.count())
	}
	if !f.list.locked {
		t.Error("refill lock must stay held until the job finishes")
	}
}

func TestFeedBatch_NoRefillAboveThreshold(t *testing.T) {
	f := newFixture(t, fastConfig())
	f.list.items = ids(candidates("c", 30, 90))

	b, _ := f.svc.FeedBatch(context.Background(), "owner", 5)
	if len(b.IDs) != 5 || b.Status != feed.StatusOK {
		t.Errorf("unexpected batch: %+v", b)
	}
	if f.refills.count() != 0 {
		t.Errorf("unexpected refill with %d remaining", len(f.list.items))
	}
}

func TestFeedBatch_DropsExcluded(t *testing.T) {
	f := newFixture(t, fastConfig())
	f.list.items = []string{"a", "b", "c", "owner"}
	f.excl.ids = []string{"b"}

	b, _ := f.svc.FeedBatch(context.Background(), "owner", 4)
	if !slices.Equal(b.IDs, []string{"a", "c"}) {
		t.Errorf("ids = %v", b.IDs)
	}
}

func TestFeedBatch_EmptyWaitsForRefill(t *testing.T) {
	f := newFixture(t, Config{Wait: time.Second, PollInterval: 2 * time.Millisecond})
	pops := 0
	f.list.onPop = func(m *mockList) {
		pops++
		if pops == 3 {
			m.items = append(m.items, "x", "y")
		}
	}

	b, err := f.svc.FeedBatch(context.Background(), "owner", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != feed.StatusOK || !slices.Equal(b.IDs, []string{"x", "y"}) {
		t.Errorf("unexpected batch: %+v", b)
	}
}

func TestFeedBatch_EmptyStatuses(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		want  feed.Status
	}{
		{"nothing arrives", func(*fixture) {}, feed.StatusRetry},
		{"exhausted marker", func(f *fixture) { f.list.exhausted = true }, feed.StatusExhausted},
		{"pop error", func(f *fixture) { f.list.popErr = errDown }, feed.StatusRetry},
		{"exclusion error", func(f *fixture) { f.excl.err = errDown }, feed.StatusRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fastConfig())
			tt.setup(f)
			b, err := f.svc.FeedBatch(context.Background(), "owner", 5)
			if err != nil {
				t.Fatalf("store trouble must not surface as error: %v", err)
			}
			if b.Status != tt.want || b.IDs == nil || len(b.IDs) != 0 {
				t.Errorf("unexpected batch: %+v", b)
			}
		})
	}
}

func TestFeedBatch_ContextCanceled(t *testing.T) {
	f := newFixture(t, Config{Wait: time.Minute, PollInterval: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, _ := f.svc.FeedBatch(ctx, "owner", 5)
	if b.Status != feed.StatusRetry {
		t.Errorf("status = %s, want retry", b.Status)
	}
}

func TestFeedBatch_RefillDeduplicated(t *testing.T) {
	f := newFixture(t, fastConfig())
	f.list.items = []string{"a", "b"}
	ctx := context.Background()

	_, _ = f.svc.FeedBatch(ctx, "owner", 1)
	_, _ = f.svc.FeedBatch(ctx, "owner", 1)
	if f.refills.count() != 1 {
		t.Errorf("expected one refill while the lock is held, got %d", f.refills.count())
	}
}

func TestFeedBatch_EnqueueFailureReleasesLock(t *testing.T) {
	f := newFixture(t, fastConfig())
	f.list.items = []string{"a"}
	f.refills.err = errDown

	b, _ := f.svc.FeedBatch(context.Background(), "owner", 1)
	if b.Status != feed.StatusOK {
		t.Errorf("status = %s", b.Status)
	}
	if f.list.locked {
		t.Error("lock must be released when enqueue fails")
	}
}

func TestFeedBatch_InvalidOwner(t *testing.T) {
	f := newFixture(t, fastConfig())
	if _, err := f.svc.FeedBatch(context.Background(), "", 5); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRefill_PoolThenLive(t *testing.T) {
	f := newFixture(t, Config{RefillSize: 5})
	f.list.items = []string{"p00"}
	f.list.locked = true
	f.list.exhausted = true
	f.pool.entries = candidates("p", 3, 90)
	f.users.sample = append(profiles("l", 4), &domain.User{ID: "p01"})
	f.excl.ids = []string{"l00"}

	n, err := f.svc.Refill(context.Background(), "owner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"p00", "p01", "p02", "l01", "l02", "l03"}
	if n != 5 || !slices.Equal(f.list.items, want) {
		t.Errorf("appended %d, list = %v, want %v", n, f.list.items, want)
	}
	if f.list.locked || f.list.exhausted {
		t.Error("refill must release the lock and clear the exhausted marker")
	}
}

func TestRefill_Redelivery(t *testing.T) {
	f := newFixture(t, Config{RefillSize: 10})
	f.pool.entries = candidates("p", 4, 90)
	ctx := context.Background()

	if n, err := f.svc.Refill(ctx, "owner"); err != nil || n != 4 {
		t.Fatalf("first refill: %d, %v", n, err)
	}
	if n, err := f.svc.Refill(ctx, "owner"); err != nil || n != 0 {
		t.Fatalf("redelivered refill: %d, %v", n, err)
	}
	if len(f.list.items) != 4 || f.list.exhausted {
		t.Errorf("list = %v exhausted=%v", f.list.items, f.list.exhausted)
	}
}

func TestRefill_NothingMarksExhausted(t *testing.T) {
	f := newFixture(t, Config{})
	f.list.locked = true

	n, err := f.svc.Refill(context.Background(), "owner")
	if err != nil || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
	if !f.list.exhausted || f.list.locked {
		t.Errorf("exhausted=%v locked=%v", f.list.exhausted, f.list.locked)
	}
}

func TestRefill_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"owner missing", func(f *fixture) { f.users.getErr = domain.ErrUserNotFound }},
		{"exclusion", func(f *fixture) { f.excl.err = errDown }},
		{"append", func(f *fixture) {
			f.pool.entries = candidates("p", 2, 90)
			f.list.appendErr = errDown
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			f.list.locked = true
			tt.setup(f)
			if _, err := f.svc.Refill(context.Background(), "owner"); err == nil {
				t.Fatal("expected error")
			}
			if f.list.locked {
				t.Error("lock must be released on failure")
			}
		})
	}
}
