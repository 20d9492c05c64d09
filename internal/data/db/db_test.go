package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u", PostgresPassword: "p", PostgresName: "trustlens"}
	if got := cfg.PostgresDSN(); got != "postgres://u:p@db:5432/trustlens?sslmode=disable" {
		t.Fatalf("dsn: %s", got)
	}
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	log, _ := logger.New("test")
	svc, err := Open(Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "t.db")}, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer svc.Close()
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if err := EnsureIndexes(svc.DB()); err != nil {
		t.Fatalf("EnsureIndexes on sqlite should be a no-op: %v", err)
	}
	for _, table := range []string{"user", "user_token", "history_item", "moderation_item"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := Open(Config{Driver: "mysql"}, log); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
