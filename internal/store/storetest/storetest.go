// Package storetest is a conformance suite every store.Backend must pass.
package storetest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/events"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewUser returns a fresh identity.
func NewUser() identity.Identity {
	id := uuid.New()
	return identity.Identity{ID: id, Email: id.String()[:8] + "@example.com", DisplayName: id.String()[:8]}
}

// Clock returns a deterministic clock advancing one second per call.
func Clock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// NewStore wires backend into a store with a recorder publisher.
func NewStore(t *testing.T, backend store.Backend) (*store.Store, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return store.New(schema.MustDefault(), backend,
		store.WithPublisher(rec),
		store.WithClock(Clock()),
	), rec
}

func sampleCareer(title string, score float64) map[string]any {
	return map[string]any{
		"title":       title,
		"industry":    "Technology",
		"description": "Builds things",
		"required_skills": []any{
			map[string]any{"skill": "SQL", "importance": "essential", "proficiency_needed": "intermediate"},
			map[string]any{"skill": "Python", "importance": "important", "proficiency_needed": "beginner"},
		},
		"salary_range": map[string]any{"min": 70000, "max": 110000},
		"job_outlook":  "growing",
		"match_score":  score,
	}
}

func sampleLearningPath() map[string]any {
	return map[string]any{
		"title":         "Become a Data Analyst",
		"target_career": "Data Analyst",
		"skill_gaps":    []any{"Statistics", "Tableau"},
		"courses": []any{
			map[string]any{"name": "Stats 101", "provider": "Coursera", "difficulty": "beginner", "cost": "free", "priority": 1},
		},
		"estimated_duration": "3 months",
		"difficulty_level":   "beginner",
	}
}

// Run executes the suite. newBackend must return an empty backend.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	ctx := context.Background()

	t.Run("create then filter by owner returns exactly the record", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who := NewUser()

		created, err := s.Create(ctx, who, "CareerPath", sampleCareer("Data Analyst", 80))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, 1, created.Version)
		assert.Equal(t, who.Owner(), created.Fields["recommended_for_user"])

		found, err := s.Filter(ctx, who, "CareerPath", map[string]any{"recommended_for_user": who.Owner()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, created.ID, found[0].ID)
		assert.Equal(t, created.Fields, found[0].Fields)
		assert.True(t, created.CreatedAt.Equal(found[0].CreatedAt))
	})

	t.Run("update status keeps every other field", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who := NewUser()

		created, err := s.Create(ctx, who, "LearningPath", sampleLearningPath())
		require.NoError(t, err)
		assert.Equal(t, "not_started", created.Fields["completion_status"])

		updated, err := s.Update(ctx, who, "LearningPath", created.ID, map[string]any{"completion_status": "completed"})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)

		found, err := s.Filter(ctx, who, "LearningPath", map[string]any{"created_for_user": who.Owner()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "completed", found[0].Fields["completion_status"])

		want := store.Clone(created.Fields)
		want["completion_status"] = "completed"
		assert.Equal(t, want, found[0].Fields)
		assert.Equal(t, 2, found[0].Version)
	})

	t.Run("bulk create with one invalid item creates nothing", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who := NewUser()

		bad := sampleCareer("Broken", 10)
		bad["job_outlook"] = "explosive"
		_, err := s.BulkCreate(ctx, who, "CareerPath", []map[string]any{
			sampleCareer("A", 10), bad, sampleCareer("C", 30),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))

		found, err := s.Owned(ctx, who, "CareerPath")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("bulk create preserves input order", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who := NewUser()

		recs, err := s.BulkCreate(ctx, who, "Project", []map[string]any{
			{"title": "One"}, {"title": "Two"}, {"title": "Three"},
		})
		require.NoError(t, err)
		require.Len(t, recs, 3)
		for i, title := range []string{"One", "Two", "Three"} {
			assert.Equal(t, title, recs[i].Fields["title"])
			assert.Equal(t, "not_started", recs[i].Fields["completion_status"])
		}

		found, err := s.Owned(ctx, who, "Project")
		require.NoError(t, err)
		assert.Equal(t, store.Records(recs).IDs(), found.IDs())
	})

	t.Run("bulk create keeps order when the clock stands still", func(t *testing.T) {
		frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		s := store.New(schema.MustDefault(), newBackend(t), store.WithClock(func() time.Time { return frozen }))
		who := NewUser()

		items := make([]map[string]any, 10)
		for i := range items {
			items[i] = map[string]any{"title": "Project " + strconv.Itoa(i)}
		}
		recs, err := s.BulkCreate(ctx, who, "Project", items)
		require.NoError(t, err)

		found, err := s.Owned(ctx, who, "Project")
		require.NoError(t, err)
		assert.Equal(t, store.Records(recs).IDs(), found.IDs())

		one, err := s.Create(ctx, who, "Project", map[string]any{"title": "Later"})
		require.NoError(t, err)
		assert.True(t, one.CreatedAt.After(recs[len(recs)-1].CreatedAt))

		updated, err := s.Update(ctx, who, "Project", recs[0].ID, map[string]any{"title": "Renamed"})
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("empty criteria is rejected", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		_, err := s.Filter(ctx, NewUser(), "CareerPath", map[string]any{})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("unknown criteria field is rejected", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		_, err := s.Filter(ctx, NewUser(), "CareerPath", map[string]any{"salary": 1})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("filter matches exactly and is scoped", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who, other := NewUser(), NewUser()

		_, err := s.BulkCreate(ctx, who, "CareerPath", []map[string]any{
			sampleCareer("Analyst", 60), sampleCareer("Engineer", 90), sampleCareer("Manager", 75),
		})
		require.NoError(t, err)
		_, err = s.Create(ctx, other, "CareerPath", sampleCareer("Analyst", 99))
		require.NoError(t, err)

		found, err := s.Filter(ctx, who, "CareerPath", map[string]any{"title": "Analyst"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, 60.0, found[0].Fields["match_score"])

		found, err = s.Filter(ctx, who, "CareerPath", map[string]any{"recommended_for_user": other.Owner()})
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = s.Filter(ctx, who, "CareerPath",
			map[string]any{"industry": "Technology", "salary_range": map[string]any{"min": 70000, "max": 110000, "currency": "USD"}},
			store.SortBy("-match_score"), store.Limit(2))
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Engineer", found[0].Fields["title"])
		assert.Equal(t, "Manager", found[1].Fields["title"])
	})

	t.Run("update of a missing or foreign record is not found", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who, other := NewUser(), NewUser()

		_, err := s.Update(ctx, who, "Project", uuid.NewString(), map[string]any{"completion_status": "completed"})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))

		rec, err := s.Create(ctx, other, "Project", map[string]any{"title": "Theirs"})
		require.NoError(t, err)
		_, err = s.Update(ctx, who, "Project", rec.ID, map[string]any{"completion_status": "completed"})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("owner field cannot point at another user", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who := NewUser()

		fields := sampleCareer("Analyst", 50)
		fields["recommended_for_user"] = NewUser().Owner()
		_, err := s.Create(ctx, who, "CareerPath", fields)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("zero identity is unauthenticated", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		_, err := s.Create(ctx, identity.Identity{}, "Project", map[string]any{"title": "x"})
		assert.True(t, errors.Is(err, apperrors.ErrAuthentication))
		_, err = s.Filter(ctx, identity.Identity{}, "Project", map[string]any{"title": "x"})
		assert.True(t, errors.Is(err, apperrors.ErrAuthentication))
	})

	t.Run("typed collection round trip", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who := NewUser()
		paths := store.NewCollection[entity.LearningPath](s)

		created, err := paths.Create(ctx, who, entity.LearningPath{
			Title:        "Frontend",
			TargetCareer: "UI Engineer",
			SkillGaps:    []string{"React"},
			Courses:      []entity.Course{{Name: "React basics", Priority: 2, Cost: entity.CostFree}},
		})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusNotStarted, created.CompletionStatus)
		assert.Equal(t, who.Owner(), created.CreatedForUser)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedDate.IsZero())

		started, err := paths.Update(ctx, who, created.ID, map[string]any{"completion_status": string(entity.StatusInProgress)})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusInProgress, started.CompletionStatus)
		assert.Equal(t, created.Courses, started.Courses)

		owned, err := paths.Owned(ctx, who)
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, created.ID, owned[0].ID)
	})

	t.Run("events are published for writes", func(t *testing.T) {
		s, rec := NewStore(t, newBackend(t))
		who := NewUser()

		r, err := s.Create(ctx, who, "InterviewPrep", map[string]any{"question": "Why us?", "question_type": "behavioral"})
		require.NoError(t, err)
		_, err = s.Update(ctx, who, "InterviewPrep", r.ID, map[string]any{"practice_status": "practiced"})
		require.NoError(t, err)

		evs := rec.Events()
		require.Len(t, evs, 2)
		assert.Equal(t, "entity.InterviewPrep.created", evs[0].RoutingKey())
		assert.Equal(t, "entity.InterviewPrep.updated", evs[1].RoutingKey())
		assert.Equal(t, 2, evs[1].Version)
	})

	t.Run("delete owner removes only that user's records", func(t *testing.T) {
		s, _ := NewStore(t, newBackend(t))
		who, other := NewUser(), NewUser()

		_, err := s.Create(ctx, who, "Project", map[string]any{"title": "Mine"})
		require.NoError(t, err)
		_, err = s.Create(ctx, other, "Project", map[string]any{"title": "Theirs"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteOwner(ctx, who))

		mine, err := s.Owned(ctx, who, "Project")
		require.NoError(t, err)
		assert.Empty(t, mine)
		theirs, err := s.Owned(ctx, other, "Project")
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})
}
