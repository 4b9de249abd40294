package careers

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps/appstest"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/career"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, env *appstest.Env, kind string, fields map[string]any) string {
	t.Helper()
	rec, err := env.Deps.Store.Create(context.Background(), env.Who, kind, fields)
	require.NoError(t, err)
	return rec.ID
}

func TestSkillGap(t *testing.T) {
	env := appstest.New(t, nil, New())
	seed(t, env, "UserProfile", map[string]any{
		"skills": []any{
			map[string]any{"name": "SQL", "proficiency": "intermediate"},
			map[string]any{"name": "Python", "proficiency": "beginner"},
		},
	})
	id := seed(t, env, "CareerPath", map[string]any{
		"title": "Data Analyst",
		"required_skills": []any{
			map[string]any{"skill": "SQL", "proficiency_needed": "advanced"},
			map[string]any{"skill": "Python", "proficiency_needed": "intermediate"},
			map[string]any{"skill": "Statistics"},
		},
	})

	var gap career.GapAnalysis
	require.Equal(t, fiber.StatusOK, env.JSON(t, "GET", "/api/p/careers/"+id+"/skill-gap", nil, &gap))
	assert.Equal(t, "Data Analyst", gap.Career)
	assert.Equal(t, 67, gap.MatchScore)
	assert.Len(t, gap.Comparisons, 3)
	assert.Len(t, gap.Develop, 3)

	assert.Equal(t, fiber.StatusNotFound,
		env.JSON(t, "GET", "/api/p/careers/"+id+"/skill-gap", nil, nil, appstest.UserHeader, uuid.NewString()))
}

func TestSkillGap_NoProfile(t *testing.T) {
	env := appstest.New(t, nil, New())
	id := seed(t, env, "CareerPath", map[string]any{
		"title":           "Data Analyst",
		"required_skills": []any{map[string]any{"skill": "SQL"}},
	})

	var gap career.GapAnalysis
	require.Equal(t, fiber.StatusOK, env.JSON(t, "GET", "/api/p/careers/"+id+"/skill-gap", nil, &gap))
	assert.Zero(t, gap.MatchScore)
	assert.Len(t, gap.Develop, 1)
}

func TestTracker(t *testing.T) {
	env := appstest.New(t, nil, New())
	seed(t, env, "UserProfile", map[string]any{
		"skills": []any{map[string]any{"name": "SQL", "proficiency": "advanced"}},
	})
	id := seed(t, env, "LearningPath", map[string]any{
		"title":      "Analytics",
		"skill_gaps": []any{"SQL", "Python"},
	})

	var tracker career.SkillTracker
	require.Equal(t, fiber.StatusOK, env.JSON(t, "GET", "/api/p/learning-paths/"+id+"/tracker", nil, &tracker))
	assert.Equal(t, 50, tracker.Overall)
	assert.Equal(t, []string{"Python"}, tracker.Missing)
}
