package postgres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

func TestCloseOnFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	cause := errors.New("migration failed")
	assert.Same(t, cause, closeOnFailure(db, cause))

	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}

func TestCloseOnFailure_NilDB(t *testing.T) {
	cause := errors.New("dial failed")
	assert.Same(t, cause, closeOnFailure(nil, cause))
}

func TestLoadBalancePolicy(t *testing.T) {
	assert.IsType(t, dbresolver.RandomPolicy{}, loadBalancePolicy(""))
	assert.IsType(t, dbresolver.RandomPolicy{}, loadBalancePolicy("random"))
	assert.IsType(t, dbresolver.RoundRobinPolicy(), loadBalancePolicy("round_robin"))
}
