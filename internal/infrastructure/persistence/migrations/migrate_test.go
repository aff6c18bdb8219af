package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNew_ReleasesConnectionOnDriverFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()

	// SQLite has no CURRENT_SCHEMA(), so the postgres driver cannot initialise
	_, err = New(ctx, sqlDB, "nutrition", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migration driver")

	assert.Zero(t, sqlDB.Stats().InUse)

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, sqlDB.PingContext(pingCtx))
}
