package analytics

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxHeaderValueLength caps referrer and user agent values stored per click.
const MaxHeaderValueLength = 512

type ClickEvent struct {
	LinkID    string
	ClickedAt time.Time
	Referrer  *string
	UserAgent *string
	IPHash    string
	Country   *string
}

// NewClickEvent normalizes raw request values: blanks become nil, invalid
// UTF-8 is dropped, long header values are truncated, country codes are
// upper-cased.
func NewClickEvent(linkID string, clickedAt time.Time, referrer, userAgent, ipHash, country string) ClickEvent {
	return ClickEvent{
		LinkID:    linkID,
		ClickedAt: clickedAt.UTC(),
		Referrer:  optional(truncate(referrer, MaxHeaderValueLength)),
		UserAgent: optional(truncate(userAgent, MaxHeaderValueLength)),
		IPHash:    ipHash,
		Country:   optional(normalizeCountry(country)),
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// truncate caps s at n bytes on a rune boundary. Invalid UTF-8 is dropped
// first so the value survives a JSON round trip unchanged.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// normalizeCountry keeps two-letter codes only. CDNs send "XX" or "T1" for
// unknown and Tor traffic.
func normalizeCountry(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) != 2 || raw == "XX" || raw == "T1" {
		return ""
	}
	for _, r := range raw {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return raw
}
