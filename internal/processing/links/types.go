package links

import "time"

type Link struct {
	ID              string
	Code            string
	OriginalURL     string
	CreatedAt       time.Time
	ExpiresAt       *time.Time
	CustomAlias     *string
	IsActive        bool
	CreatedByIPHash string
}

// Expired reports whether the link's deadline is at or before now.
func (l *Link) Expired(now time.Time) bool {
	return isExpired(l.ExpiresAt, now)
}

// CachedLink is the projection of a Link kept in the resolution cache. It
// carries the link ID so cache hits can emit click events without a store read.
type CachedLink struct {
	LinkID      string     `json:"linkId"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	IsActive    bool       `json:"isActive"`
}

type CreateLinkInput struct {
	URL             string
	CustomAlias     string
	ExpiresAt       *time.Time
	RequesterIPHash string
}

type Resolution struct {
	LinkID      string
	OriginalURL string
}

type LinkStats struct {
	Code          string     `json:"code"`
	TotalClicks   int64      `json:"totalClicks"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
}

func isExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && !expiresAt.After(now)
}
