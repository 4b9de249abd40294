package entities

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apps/appstest"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenFilter(t *testing.T) {
	env := appstest.New(t, nil, New())

	var created dto.RecordResponse
	status := env.JSON(t, "POST", "/api/p/entities/career_path", map[string]any{
		"title":       "Data Analyst",
		"match_score": 82,
		"job_outlook": "growing",
	}, &created)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, env.Who.Owner(), created["recommended_for_user"])
	assert.Equal(t, 1.0, created["version"])

	status = env.JSON(t, "POST", "/api/p/entities/CareerPath", map[string]any{
		"title": "UX Designer", "match_score": 40, "job_outlook": "stable",
	}, nil)
	require.Equal(t, fiber.StatusCreated, status)

	var list dto.RecordsResponse
	status = env.JSON(t, "GET", "/api/p/entities/CareerPath?match_score=82", nil, &list)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created["id"], list.Items[0]["id"])

	status = env.JSON(t, "GET", "/api/p/entities/CareerPath?sort=-match_score&limit=1", nil, &list)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Data Analyst", list.Items[0]["title"])

	// Another user sees nothing.
	other := uuid.NewString()
	status = env.JSON(t, "GET", "/api/p/entities/CareerPath", nil, &list, appstest.UserHeader, other)
	require.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, list.Count)

	status = env.JSON(t, "GET", "/api/p/entities/CareerPath/"+created["id"].(string), nil, nil, appstest.UserHeader, other)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestUpdateKeepsOtherFields(t *testing.T) {
	env := appstest.New(t, nil, New())

	var created dto.RecordResponse
	require.Equal(t, fiber.StatusCreated, env.JSON(t, "POST", "/api/p/entities/LearningPath", map[string]any{
		"title":         "SQL mastery",
		"skill_gaps":    []string{"SQL"},
		"target_career": "Data Analyst",
	}, &created))
	id := created["id"].(string)

	var updated dto.RecordResponse
	status := env.JSON(t, "PATCH", "/api/p/entities/LearningPath/"+id, map[string]any{"completion_status": "completed"}, &updated)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "completed", updated["completion_status"])
	assert.Equal(t, "SQL mastery", updated["title"])
	assert.Equal(t, []any{"SQL"}, updated["skill_gaps"])
	assert.Equal(t, 2.0, updated["version"])

	var got dto.RecordResponse
	require.Equal(t, fiber.StatusOK, env.JSON(t, "GET", "/api/p/entities/LearningPath/"+id, nil, &got))
	assert.Equal(t, updated, got)

	var errBody dto.ErrorResponse
	status = env.JSON(t, "PATCH", "/api/p/entities/LearningPath/"+id, map[string]any{"completion_status": "paused"}, &errBody)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, errBody.Error)
}

func TestBulkCreate_InvalidItemCreatesNothing(t *testing.T) {
	env := appstest.New(t, nil, New())

	var errBody dto.ErrorResponse
	status := env.JSON(t, "POST", "/api/p/entities/Project/bulk", dto.BulkCreateRequest{Items: []map[string]any{
		{"title": "Dashboard"},
		{"title": "Bad", "difficulty_level": "impossible"},
	}}, &errBody)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, errBody.Message, "items[1]")
	assert.Zero(t, env.Backend.Len())

	var list dto.RecordsResponse
	status = env.JSON(t, "POST", "/api/p/entities/Project/bulk", dto.BulkCreateRequest{Items: []map[string]any{
		{"title": "Dashboard"}, {"title": "ETL job"},
	}}, &list)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "Dashboard", list.Items[0]["title"])
}

func TestRequestErrors(t *testing.T) {
	env := appstest.New(t, nil, New())

	cases := map[string]struct {
		method, path string
		body         any
		status       int
	}{
		"unknown kind":       {"GET", "/api/p/entities/Salary", nil, fiber.StatusBadRequest},
		"unknown filter":     {"GET", "/api/p/entities/CareerPath?salary=1", nil, fiber.StatusBadRequest},
		"non numeric filter": {"GET", "/api/p/entities/CareerPath?match_score=high", nil, fiber.StatusBadRequest},
		"bad limit":          {"GET", "/api/p/entities/CareerPath?limit=zero", nil, fiber.StatusBadRequest},
		"unknown sort":       {"GET", "/api/p/entities/CareerPath?sort=salary", nil, fiber.StatusBadRequest},
		"missing record":     {"GET", "/api/p/entities/CareerPath/" + uuid.NewString(), nil, fiber.StatusNotFound},
		"system field":       {"POST", "/api/p/entities/CareerPath", map[string]any{"id": "x"}, fiber.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var errBody dto.ErrorResponse
			assert.Equal(t, tc.status, env.JSON(t, tc.method, tc.path, tc.body, &errBody))
			assert.True(t, errBody.Error)
		})
	}
}

func TestSchema(t *testing.T) {
	env := appstest.New(t, nil, New())

	var doc map[string]any
	require.Equal(t, fiber.StatusOK, env.JSON(t, "GET", "/api/p/schemas/interview-prep", nil, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Contains(t, doc["properties"], "question")
}
