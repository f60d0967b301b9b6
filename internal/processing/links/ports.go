package links

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("link not found")
	ErrCodeTaken          = errors.New("code already taken")
	ErrAliasTaken         = errors.New("custom alias is already in use")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
	ErrInvalidURL         = errors.New("invalid url")
	ErrInvalidAlias       = errors.New("invalid custom alias")
	ErrExpiryInPast       = errors.New("expiresAt must be in the future")
)

// LinkStore is the durable home of links. Create assigns link.ID and returns
// ErrCodeTaken when link.Code violates uniqueness. FindByCode returns
// ErrNotFound when no row matches.
type LinkStore interface {
	Create(ctx context.Context, link *Link) error
	FindByCode(ctx context.Context, code string) (*Link, error)
}

// ClickStatsReader aggregates stored clicks for a link on read.
type ClickStatsReader interface {
	StatsByLinkID(ctx context.Context, linkID string) (count int64, lastAt *time.Time, err error)
}

// LinkCache returns (nil, nil) on a miss.
type LinkCache interface {
	Get(ctx context.Context, code string) (*CachedLink, error)
	Set(ctx context.Context, code string, value CachedLink, ttl time.Duration) error
}

type CodeGenerator interface {
	Generate(length int) (string, error)
}
