package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/db"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
)

type ClicksRepository struct {
	db *sql.DB
}

func NewClicksRepository(s *db.SQLite) (*ClicksRepository, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("sqlite database is nil")
	}
	return &ClicksRepository{db: s.DB}, nil
}

func (r *ClicksRepository) CreateClick(ctx context.Context, ev analytics.ClickEvent) error {
	linkID, err := strconv.ParseInt(ev.LinkID, 10, 64)
	if err != nil {
		return fmt.Errorf("click link id %q: %w", ev.LinkID, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO clicks (link_id, clicked_at, referrer, user_agent, ip_hash, country)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		linkID,
		ev.ClickedAt.UnixMilli(),
		nullableString(ev.Referrer),
		nullableString(ev.UserAgent),
		ev.IPHash,
		nullableString(ev.Country),
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (r *ClicksRepository) StatsByLinkID(ctx context.Context, linkID string) (int64, *time.Time, error) {
	id, err := strconv.ParseInt(linkID, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("stats link id %q: %w", linkID, err)
	}

	var (
		count int64
		last  sql.NullInt64
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(clicked_at) FROM clicks WHERE link_id = ?`, id,
	).Scan(&count, &last)
	if err != nil {
		return 0, nil, fmt.Errorf("aggregate clicks: %w", err)
	}

	return count, millisValue(last), nil
}
