package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestWithTransactionCommits(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)

	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&Genre{Name: "Action"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&Genre{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)

	boom := errors.New("boom")
	err := tm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&Genre{Name: "Action"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&Genre{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTransactionContextLifecycle(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTransactionManager(db)

	txCtx, err := tm.BeginTransaction(context.Background())
	require.NoError(t, err)
	assert.True(t, txCtx.IsActive())
	assert.NotEmpty(t, txCtx.ID())

	require.NoError(t, txCtx.DB().Create(&Director{Name: "John Smith"}).Error)
	require.NoError(t, txCtx.Commit())
	assert.False(t, txCtx.IsActive())

	// a finished transaction cannot be reused
	assert.Error(t, txCtx.Commit())
	assert.Error(t, txCtx.Rollback())

	var count int64
	require.NoError(t, db.Model(&Director{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
