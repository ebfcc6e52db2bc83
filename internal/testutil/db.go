// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/batikin/tailor-backend/internal/db"
	"github.com/batikin/tailor-backend/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a temp dir, closed on test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), fmt.Sprintf("batik_test_%d.db", time.Now().UnixNano()))
	conn, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps concurrent test writers from tripping SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return conn
}

// SeedUser inserts a user with the given role; tailors get a TailorDetails row.
func SeedUser(t *testing.T, conn *gorm.DB, id string, role model.Role) *model.User {
	t.Helper()
	name := "Name " + id
	u := &model.User{
		UserID:   id,
		Username: id,
		Email:    id + "@example.com",
		Role:     role,
		FullName: &name,
	}
	if role == model.RoleTailor {
		bio := "bio of " + id
		u.TailorDetails = &model.TailorDetails{UserID: id, Bio: &bio, Rating: 4.5}
	}
	if err := conn.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}
