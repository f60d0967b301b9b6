// Package sqlite implements the link and click stores on database/sql for
// embedded SQLite files and remote libsql databases. Timestamps are stored as
// unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type LinksRepository struct {
	db *sql.DB
}

func NewLinksRepository(s *db.SQLite) (*LinksRepository, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("sqlite database is nil")
	}
	return &LinksRepository{db: s.DB}, nil
}

func (r *LinksRepository) Create(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO links (code, original_url, created_at, expires_at, custom_alias, is_active, created_by_ip_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.Code,
		link.OriginalURL,
		link.CreatedAt.UnixMilli(),
		nullableMillis(link.ExpiresAt),
		nullableString(link.CustomAlias),
		link.IsActive,
		link.CreatedByIPHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return links.ErrCodeTaken
		}
		return fmt.Errorf("insert link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read link id: %w", err)
	}
	link.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *LinksRepository) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	var (
		id          int64
		out         links.Link
		createdAt   int64
		expiresAt   sql.NullInt64
		customAlias sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, original_url, created_at, expires_at, custom_alias, is_active, created_by_ip_hash
		 FROM links WHERE code = ?`, code,
	).Scan(&id, &out.Code, &out.OriginalURL, &createdAt, &expiresAt, &customAlias, &out.IsActive, &out.CreatedByIPHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find link by code: %w", err)
	}

	out.ID = strconv.FormatInt(id, 10)
	out.CreatedAt = time.UnixMilli(createdAt).UTC()
	out.ExpiresAt = millisValue(expiresAt)
	if customAlias.Valid {
		alias := customAlias.String
		out.CustomAlias = &alias
	}
	return &out, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	// libsql reports constraint failures as plain text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func millisValue(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
