package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const insertLink = `
INSERT INTO links (id, code, original_url, created_at, expires_at, custom_alias, is_active, created_by_ip_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectLinkByCode = `
SELECT id, code, original_url, created_at, expires_at, custom_alias, is_active, created_by_ip_hash
FROM links
WHERE code = $1`

type LinksRepository struct {
	pool *pgxpool.Pool
}

func NewLinksRepository(p *db.Postgres) (*LinksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &LinksRepository{pool: p.Pool}, nil
}

// Create inserts link with a fresh time-ordered UUID. link.ID is only set
// when the insert succeeds.
func (r *LinksRepository) Create(ctx context.Context, link *links.Link) error {
	if link == nil {
		return errors.New("link is nil")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate link id: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertLink,
		id,
		link.Code,
		link.OriginalURL,
		toTimestamptz(link.CreatedAt),
		toNullableTimestamptz(link.ExpiresAt),
		toNullableText(link.CustomAlias),
		link.IsActive,
		link.CreatedByIPHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return links.ErrCodeTaken
		}
		return fmt.Errorf("insert link: %w", err)
	}

	link.ID = id.String()
	return nil
}

func (r *LinksRepository) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	var (
		id          uuid.UUID
		out         links.Link
		createdAt   pgtype.Timestamptz
		expiresAt   pgtype.Timestamptz
		customAlias pgtype.Text
	)

	err := r.pool.QueryRow(ctx, selectLinkByCode, code).Scan(
		&id,
		&out.Code,
		&out.OriginalURL,
		&createdAt,
		&expiresAt,
		&customAlias,
		&out.IsActive,
		&out.CreatedByIPHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find link by code: %w", err)
	}

	out.ID = id.String()
	out.CreatedAt = createdAt.Time.UTC()
	out.ExpiresAt = timestamptzValue(expiresAt)
	if customAlias.Valid {
		alias := customAlias.String
		out.CustomAlias = &alias
	}

	return &out, nil
}

func toNullableText(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *v, Valid: true}
}

func toTimestamptz(v time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  v.UTC(),
		Valid: true,
	}
}

func toNullableTimestamptz(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{}
	}
	return toTimestamptz(*v)
}

func timestamptzValue(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
