package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// SQLite holds a database/sql handle opened with either the embedded modernc
// driver or the libsql client for remote Turso databases.
type SQLite struct {
	DB     *sql.DB
	Driver string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS links (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	code               TEXT    NOT NULL UNIQUE,
	original_url       TEXT    NOT NULL,
	created_at         INTEGER NOT NULL,
	expires_at         INTEGER NULL,
	custom_alias       TEXT    NULL,
	is_active          INTEGER NOT NULL DEFAULT 1,
	created_by_ip_hash TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS clicks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	link_id    INTEGER NOT NULL REFERENCES links(id) ON DELETE CASCADE,
	clicked_at INTEGER NOT NULL,
	referrer   TEXT    NULL,
	user_agent TEXT    NULL,
	ip_hash    TEXT    NOT NULL DEFAULT '',
	country    TEXT    NULL
);

CREATE INDEX IF NOT EXISTS idx_clicks_link_id_clicked_at ON clicks(link_id, clicked_at DESC);
`

func sqliteDriverFor(url string) string {
	if strings.HasPrefix(url, "libsql://") || strings.HasPrefix(url, "wss://") || strings.HasPrefix(url, "https://") {
		return "libsql"
	}
	return "sqlite"
}

// OpenSQLite opens url and creates the schema when missing.
func OpenSQLite(ctx context.Context, url string) (*SQLite, error) {
	driver := sqliteDriverFor(url)

	sqlDB, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if strings.Contains(url, ":memory:") {
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLite{DB: sqlDB, Driver: driver}, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
