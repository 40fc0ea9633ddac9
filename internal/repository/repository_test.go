package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/samadammeek/core-geonetwork/internal/domain"
	"github.com/samadammeek/core-geonetwork/internal/pgtest"
)

type testEnv struct {
	ctx        context.Context
	repository *Repository
	stop       func()
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	pool, stop := pgtest.NewPool(t, "feedback_test", 40000)
	return &testEnv{
		ctx:        context.Background(),
		repository: NewWithPool(pool),
		stop:       stop,
	}
}

func (e *testEnv) cleanup() {
	if e.stop != nil {
		e.stop()
	}
}

func mustCreateFeedback(t testing.TB, env *testEnv, metadataUUID string, status domain.FeedbackStatus, createdAt time.Time) domain.UserFeedback {
	t.Helper()
	fb, err := env.repository.Feedback.Create(env.ctx, domain.UserFeedback{
		UUID:          uuid.NewString(),
		MetadataUUID:  metadataUUID,
		MetadataTitle: "Record " + metadataUUID,
		Comment:       "useful dataset",
		Ratings:       map[int]int{domain.CriterionOverall: 4, domain.CriterionReadability: 3},
		Keywords:      []string{"water"},
		Author:        domain.Author{Name: "Jo", Email: "jo@example.org"},
		Status:        status,
		CreatedAt:     createdAt,
	})
	if err != nil {
		t.Fatalf("create feedback on %q: %v", metadataUUID, err)
	}
	return fb
}

func TestFeedbackRepository_CreateGet(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	draft := mustCreateFeedback(t, env, "md-1", domain.StatusDraft, time.Now().UTC())

	got, err := env.repository.Feedback.Get(env.ctx, draft.UUID, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Ratings[domain.CriterionOverall] != 4 || got.Ratings[domain.CriterionReadability] != 3 {
		t.Fatalf("ratings not round-tripped: %+v", got.Ratings)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "water" {
		t.Fatalf("keywords not round-tripped: %+v", got.Keywords)
	}
	if got.Author.UserID != nil {
		t.Fatalf("anonymous author gained a user id: %v", *got.Author.UserID)
	}

	if _, err := env.repository.Feedback.Get(env.ctx, draft.UUID, true); err != ErrNotFound {
		t.Fatalf("draft visible with publishedOnly, err = %v", err)
	}
	if _, err := env.repository.Feedback.Get(env.ctx, "missing", false); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown uuid, got %v", err)
	}
}

func TestFeedbackRepository_List(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	older := mustCreateFeedback(t, env, "md-1", domain.StatusPublished, base)
	newer := mustCreateFeedback(t, env, "md-1", domain.StatusPublished, base.Add(time.Hour))
	mustCreateFeedback(t, env, "md-1", domain.StatusDraft, base.Add(2*time.Hour))
	mustCreateFeedback(t, env, "md-2", domain.StatusPublished, base.Add(3*time.Hour))

	md := "md-1"
	all, err := env.repository.Feedback.List(env.ctx, FeedbackListFilters{MetadataUUID: &md})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(md-1) size = %d, want 3", len(all))
	}

	published, err := env.repository.Feedback.List(env.ctx, FeedbackListFilters{MetadataUUID: &md, PublishedOnly: true})
	if err != nil {
		t.Fatalf("List published: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("published size = %d, want 2", len(published))
	}
	if published[0].UUID != newer.UUID || published[1].UUID != older.UUID {
		t.Fatalf("list not ordered newest first")
	}

	limited, err := env.repository.Feedback.List(env.ctx, FeedbackListFilters{Limit: 2})
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited size = %d, want 2", len(limited))
	}

	everything, err := env.repository.Feedback.List(env.ctx, FeedbackListFilters{Limit: -1})
	if err != nil {
		t.Fatalf("List unlimited: %v", err)
	}
	if len(everything) != 4 {
		t.Fatalf("unlimited size = %d, want 4", len(everything))
	}
}

func TestFeedbackRepository_PublishDelete(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	draft := mustCreateFeedback(t, env, "md-1", domain.StatusDraft, time.Now().UTC())
	approver := "reviewer-1"

	published, err := env.repository.Feedback.Publish(env.ctx, draft.UUID, &approver)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !published.Published() {
		t.Fatalf("status = %s, want published", published.Status)
	}
	if published.ApproverID == nil || *published.ApproverID != approver {
		t.Fatalf("approver not recorded: %+v", published.ApproverID)
	}
	if _, err := env.repository.Feedback.Publish(env.ctx, "missing", &approver); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound publishing unknown uuid, got %v", err)
	}

	if err := env.repository.Feedback.Delete(env.ctx, draft.UUID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := env.repository.Feedback.Delete(env.ctx, draft.UUID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFeedbackRepository_ConcurrentCreates(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.repository.Feedback.Create(env.ctx, domain.UserFeedback{
				UUID:         uuid.NewString(),
				MetadataUUID: "md-concurrent",
				Status:       domain.StatusPublished,
				CreatedAt:    time.Now().UTC(),
			}); err != nil {
				t.Errorf("concurrent create: %v", err)
			}
		}()
	}
	wg.Wait()

	md := "md-concurrent"
	items, err := env.repository.Feedback.List(env.ctx, FeedbackListFilters{MetadataUUID: &md})
	if err != nil {
		t.Fatalf("List after concurrent creates: %v", err)
	}
	if len(items) != workers {
		t.Fatalf("size = %d, want %d", len(items), workers)
	}
}

func TestSettingsRepository_GetSet(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	if _, err := env.repository.Settings.Get(env.ctx, domain.SettingLocalRatingEnable); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unset setting, got %v", err)
	}
	if err := env.repository.Settings.Set(env.ctx, domain.SettingLocalRatingEnable, domain.RatingsBasic); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := env.repository.Settings.Set(env.ctx, domain.SettingLocalRatingEnable, domain.RatingsAdvanced); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	value, err := env.repository.Settings.Get(env.ctx, domain.SettingLocalRatingEnable)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != domain.RatingsAdvanced {
		t.Fatalf("value = %s, want %s", value, domain.RatingsAdvanced)
	}
}

func BenchmarkFeedbackRepositoryCreate(b *testing.B) {
	env := newTestEnv(b)
	defer env.cleanup()

	for i := 0; i < b.N; i++ {
		mustCreateFeedback(b, env, fmt.Sprintf("bench-%d", i%10), domain.StatusPublished, time.Now().UTC())
	}
}
