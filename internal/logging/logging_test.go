package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/database"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/models"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHandler struct {
	level   slog.Level
	records []slog.Record
}

func (c *captureHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level }
func (c *captureHandler) Handle(_ context.Context, r slog.Record) error {
	c.records = append(c.records, r)
	return nil
}
func (c *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *captureHandler) WithGroup(string) slog.Handler      { return c }

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWriter_FansOutByLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	errorsOnly := &captureHandler{level: slog.LevelError}
	logger := SetupWriter(&buf, "info", errorsOnly)

	logger.Info("generation finished", "action", "generation.careers")
	logger.Error("generation failed", "action", "generation.careers")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "generation finished", first["msg"])

	require.Len(t, errorsOnly.records, 1)
	assert.Equal(t, "generation failed", errorsOnly.records[0].Message)
}

func TestPGHandler_PersistsErrorRecords(t *testing.T) {
	db, err := database.Open(testhelpers.PostgresDSN(t))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Exec("DELETE FROM system_logs").Error)

	h := NewPGHandler(db)
	t.Cleanup(h.Stop)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("store unavailable",
		"user_id", "7d1f0c9e-5d0b-4e58-9d0c-3c1b9f4e2a10",
		"action", "entity.create",
		"kind", "CareerPath",
		"error", "connection refused",
		"latency_ms", 12.6,
		"attempt", 2,
	)
	h.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	got := logs[0]
	assert.Equal(t, "ERROR", got.Level)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "entity.create", got.Action)
	assert.Equal(t, "CareerPath", got.Kind)
	assert.Equal(t, "connection refused", got.Error)
	assert.Equal(t, 13, got.LatencyMs)
	require.NotNil(t, got.UserID)
	assert.JSONEq(t, `{"attempt":2}`, string(got.Extra))

	old := models.SystemLog{Timestamp: time.Now().Add(-31 * 24 * time.Hour), Level: "ERROR", Message: "old"}
	require.NoError(t, db.Create(&old).Error)
	deleted, err := Cleanup(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

type failingHandler struct{ captureHandler }

func (f *failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_ContinuesPastFailure(t *testing.T) {
	failing := &failingHandler{captureHandler{level: slog.LevelInfo}}
	after := &captureHandler{level: slog.LevelInfo}
	h := NewMultiHandler(failing, after)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "x", 0))
	assert.EqualError(t, err, "sink down")
	assert.Len(t, after.records, 1)
}
