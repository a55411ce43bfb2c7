package database

import (
	"testing"

	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLiteInMemory(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	defer Close(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))

	// Records survive a second schema-ensure pass
	thread := &models.Thread{ExternalID: "t-schema", Subject: "hello"}
	require.NoError(t, db.Create(thread).Error)

	require.NoError(t, Migrate(db))

	var count int64
	require.NoError(t, db.Model(&models.Thread{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"threads", "messages", "suggestions", "decisions", "drafts"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
