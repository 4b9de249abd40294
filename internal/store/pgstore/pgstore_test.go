package pgstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/models"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store/storetest"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open(testhelpers.PostgresDSN(t)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	b := New(db)
	require.NoError(t, b.Migrate())
	return db
}

func TestBackendConformance(t *testing.T) {
	db := openDB(t)
	storetest.Run(t, func(t *testing.T) store.Backend {
		require.NoError(t, db.Exec("TRUNCATE entity_records").Error)
		return New(db)
	})
}

func TestInsert_RollsBackWholeBatch(t *testing.T) {
	db := openDB(t)
	b := New(db)
	ctx := context.Background()
	owner := uuid.New()

	dup := uuid.NewString()
	err := b.Insert(ctx, []store.Record{
		{ID: uuid.NewString(), Kind: "Project", Owner: owner, Fields: map[string]any{"title": "a"}, Version: 1},
		{ID: dup, Kind: "Project", Owner: owner, Fields: map[string]any{"title": "b"}, Version: 1},
		{ID: dup, Kind: "Project", Owner: owner, Fields: map[string]any{"title": "c"}, Version: 1},
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.EntityRecord{}).Where("owner_id = ?", owner).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReplace_StaleVersionConflicts(t *testing.T) {
	db := openDB(t)
	s, _ := storetest.NewStore(t, New(db))
	ctx := context.Background()
	who := storetest.NewUser()

	rec, err := s.Create(ctx, who, "Project", map[string]any{"title": "x"})
	require.NoError(t, err)

	next := rec
	next.Version = 2
	require.NoError(t, New(db).Replace(ctx, next, 1))
	err = New(db).Replace(ctx, next, 1)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestGet_NonUUIDIsNotFound(t *testing.T) {
	db := openDB(t)
	_, err := New(db).Get(context.Background(), "Project", uuid.New(), "not-a-uuid")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
