// Package testdb открывает встроенную SQLite со схемой приложения для тестов
package testdb

import (
	"testing"

	"github.com/GoArmGo/PhotoShare/internal/database/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New создает in-memory SQLite и накатывает схему
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// каждое соединение к :memory: получает собственную бд
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, storage.AutoMigrate(db), "Failed to migrate schema")
	return db
}
