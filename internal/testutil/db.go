// Package testutil 测试辅助：每个测试一个独立的 SQLite 文件库
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NCUHOME-Y/TimiFocus/internal/database"
)

// NewDB 迁移并播种后的临时库，测试结束自动关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timifocus_test.db")
	db, err := database.InitGorm(sqlite.Open(database.SQLiteDSN(path)))
	if err != nil {
		t.Fatalf("init test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
