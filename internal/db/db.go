package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/config"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
	"github.com/kommunelab/lovassistent/internal/pkg/retry"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	connectAttempts = 5
	connectBackoff  = 3 * time.Second
)

// Open connects to Postgres, retrying while the database comes up: 5
// attempts, 3s apart, then the error is fatal to the caller.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	}

	var db *sqlx.DB
	err := retry.Do(ctx, connectAttempts, connectBackoff, func() error {
		conn, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return err
		}
		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			logutil.GetLogger(ctx).Warn("database not ready", zap.Error(err))
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logutil.GetLogger(ctx).Info("connected to database")
	return db, nil
}

// ApplyMigrations runs the embedded SQL files in name order. Statements are
// idempotent (IF NOT EXISTS), so reruns are safe.
func ApplyMigrations(db *sqlx.DB) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return err
		}
		queries := strings.Split(string(content), ";")
		for _, q := range queries {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			if _, err := db.Exec(q); err != nil {
				if strings.Contains(err.Error(), "already exists") {
					continue
				}
				return fmt.Errorf("execute query in %s: %w", file, err)
			}
		}
	}
	return nil
}
