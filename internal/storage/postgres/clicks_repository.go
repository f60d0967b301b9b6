package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertClick = `
INSERT INTO clicks (link_id, clicked_at, referrer, user_agent, ip_hash, country)
VALUES ($1, $2, $3, $4, $5, $6)`

const selectClickStats = `
SELECT COUNT(*), MAX(clicked_at)
FROM clicks
WHERE link_id = $1`

type ClicksRepository struct {
	pool *pgxpool.Pool
}

func NewClicksRepository(p *db.Postgres) (*ClicksRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &ClicksRepository{pool: p.Pool}, nil
}

func (r *ClicksRepository) CreateClick(ctx context.Context, ev analytics.ClickEvent) error {
	linkID, err := uuid.Parse(ev.LinkID)
	if err != nil {
		return fmt.Errorf("click link id %q: %w", ev.LinkID, err)
	}

	_, err = r.pool.Exec(ctx, insertClick,
		linkID,
		toTimestamptz(ev.ClickedAt),
		toNullableText(ev.Referrer),
		toNullableText(ev.UserAgent),
		ev.IPHash,
		toNullableText(ev.Country),
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (r *ClicksRepository) StatsByLinkID(ctx context.Context, linkID string) (int64, *time.Time, error) {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return 0, nil, fmt.Errorf("stats link id %q: %w", linkID, err)
	}

	var (
		count int64
		last  pgtype.Timestamptz
	)
	if err := r.pool.QueryRow(ctx, selectClickStats, id).Scan(&count, &last); err != nil {
		return 0, nil, fmt.Errorf("aggregate clicks: %w", err)
	}

	return count, timestamptzValue(last), nil
}
