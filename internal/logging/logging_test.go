package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	return db
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var info, errOnly bytes.Buffer
	h := NewMultiHandler(
		NewJSONHandler(&info, "info"),
		NewJSONHandler(&errOnly, "error"),
	)
	log := slog.New(h).With("component", "detector")

	log.Info("detection complete", "saved", 1)
	log.Error("failed to save subscription", "error", "disk full")

	assert.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errOnly.Bytes(), []byte("\n")))
	assert.Contains(t, errOnly.String(), `"component":"detector"`)
}

func TestPGHandler_PersistsErrors(t *testing.T) {
	db := openTestDB(t)
	h := NewPGHandler(db, time.Hour)
	defer h.Stop()

	log := slog.New(h).With("component", "classifier", "provider", "groq")
	log.Info("ignored")
	log.Error("classifier request failed", "user_id", "42", "action", "detect", "error", "timeout", "kind", "subscription")
	h.Flush()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "classifier", row.Component)
	assert.Equal(t, "detect", row.Action)
	assert.Equal(t, "timeout", row.Error)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "42", *row.UserID)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(row.Extra, &extra))
	assert.Equal(t, "groq", extra["provider"])
	assert.Equal(t, "subscription", extra["kind"])
}

func TestDeleteBefore(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: newID(), Timestamp: now.AddDate(0, 0, -40), Level: "ERROR"},
		{ID: newID(), Timestamp: now.Add(-time.Hour), Level: "ERROR"},
	}).Error)

	n, err := DeleteBefore(db, now.AddDate(0, 0, -30))

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	var count int64
	db.Model(&models.SystemLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMultiHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(NewJSONHandler(&buf, "warn"))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func newID() uuid.UUID { return uuid.New() }
