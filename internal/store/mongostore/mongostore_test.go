package mongostore

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/storetest"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendConformance(t *testing.T) {
	uri := testhelpers.MongoURI(t)
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) store.Backend {
		b, err := Connect(ctx, uri, "careerpilot_"+uuid.NewString()[:8])
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close(ctx) })
		return b
	})
}

func TestFromDocument_NormalizesNumbers(t *testing.T) {
	owner := uuid.New()
	r, err := fromDocument(document{
		ID:    "rec-1",
		Kind:  "CareerPath",
		Owner: owner.String(),
		Data: map[string]any{
			"match_score":  int32(80),
			"salary_range": map[string]any{"min": 1.5, "currency": "USD"},
			"tags":         []any{"a", "b"},
		},
		Version: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, r.Fields["match_score"])
	assert.Equal(t, map[string]any{"min": 1.5, "currency": "USD"}, r.Fields["salary_range"])
	assert.Equal(t, []any{"a", "b"}, r.Fields["tags"])
	assert.Equal(t, owner, r.Owner)
}
