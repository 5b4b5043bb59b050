package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/kommunelab/lovassistent/internal/config"
	"github.com/kommunelab/lovassistent/internal/db"
	"github.com/kommunelab/lovassistent/internal/repo"
)

// OpenTestDB connects to a disposable pgvector-enabled postgres. Tests are
// skipped when TEST_DB_HOST is not set.
func OpenTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(context.Background(), config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "lovassistent",
		Password: "lovassistent_pass",
		DBName:   "lovassistent_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if err := repo.ClearCorpus(context.Background(), conn); err != nil {
		t.Fatalf("clear corpus: %v", err)
	}
	for _, table := range []string{"chat_messages", "chat_sessions"} {
		if _, err := conn.ExecContext(context.Background(), "TRUNCATE TABLE "+table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return conn, func() {
		_ = conn.Close()
	}
}
