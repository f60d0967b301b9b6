package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/apperr"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/metrics"
	"github.com/IgorGrieder/shortlink/pkg/breaker"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 5
	DefaultCacheTTL   = time.Hour
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

type Options struct {
	CodeLength      int
	MaxRetries      int
	DefaultCacheTTL time.Duration

	// Cache is optional. It is always wrapped with NewGuardedCache.
	Cache        LinkCache
	CacheBreaker *breaker.CircuitBreaker
}

type Service struct {
	store      LinkStore
	stats      ClickStatsReader
	generator  CodeGenerator
	cache      LinkCache
	codeLength int
	maxRetries int
	cacheTTL   time.Duration
	now        func() time.Time
}

func NewService(store LinkStore, stats ClickStatsReader, generator CodeGenerator, opts Options) *Service {
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.DefaultCacheTTL <= 0 {
		opts.DefaultCacheTTL = DefaultCacheTTL
	}

	return &Service{
		store:      store,
		stats:      stats,
		generator:  generator,
		cache:      NewGuardedCache(opts.Cache, opts.CacheBreaker),
		codeLength: opts.CodeLength,
		maxRetries: opts.MaxRetries,
		cacheTTL:   opts.DefaultCacheTTL,
		now:        time.Now,
	}
}

// CreateLink stores a new link. A custom alias gets exactly one insert
// attempt; otherwise random codes are retried on collision up to maxRetries.
func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*Link, error) {
	const op = "links.Service.CreateLink"

	normalizedURL, err := validateAndNormalizeURL(in.URL)
	if err != nil {
		return nil, apperr.E(op, apperr.Validation, ErrInvalidURL)
	}

	alias := strings.TrimSpace(in.CustomAlias)
	if alias != "" && !aliasPattern.MatchString(alias) {
		return nil, apperr.E(op, apperr.Validation, ErrInvalidAlias)
	}

	now := s.now().UTC()
	var expiresAt *time.Time
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(now) {
			return nil, apperr.E(op, apperr.Validation, ErrExpiryInPast)
		}
		t := in.ExpiresAt.UTC()
		expiresAt = &t
	}

	link := &Link{
		OriginalURL:     normalizedURL,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
		IsActive:        true,
		CreatedByIPHash: in.RequesterIPHash,
	}

	if alias != "" {
		link.Code = alias
		link.CustomAlias = &alias
		if err := s.store.Create(ctx, link); err != nil {
			if errors.Is(err, ErrCodeTaken) {
				return nil, apperr.E(op, apperr.Conflict, ErrAliasTaken)
			}
			return nil, apperr.E(op, apperr.Internal, err)
		}
		metrics.LinksCreated.WithLabelValues("alias").Inc()
		return link, nil
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		code, err := s.generator.Generate(s.codeLength)
		if err != nil {
			return nil, apperr.E(op, apperr.Internal, fmt.Errorf("generate code: %w", err))
		}
		link.Code = code

		err = s.store.Create(ctx, link)
		if err == nil {
			metrics.LinksCreated.WithLabelValues("random").Inc()
			return link, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			return nil, apperr.E(op, apperr.Internal, err)
		}

		metrics.CodeCollisions.Inc()
		logger.Debug("short code collision, retrying", zap.String("code", code), zap.Int("attempt", attempt))
	}

	return nil, apperr.E(op, apperr.Conflict, ErrCodeSpaceExhausted)
}

// Resolve returns the destination for code. Absent, inactive and expired
// links all fail with NotFound. A cache hit never reaches the store.
func (s *Service) Resolve(ctx context.Context, code string) (*Resolution, error) {
	const op = "links.Service.Resolve"

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.E(op, apperr.NotFound, ErrNotFound)
	}

	now := s.now().UTC()

	if s.cache != nil {
		cached, _ := s.cache.Get(ctx, code)
		if cached != nil {
			if !cached.IsActive || isExpired(cached.ExpiresAt, now) {
				return nil, apperr.E(op, apperr.NotFound, ErrNotFound)
			}
			return &Resolution{LinkID: cached.LinkID, OriginalURL: cached.OriginalURL}, nil
		}
	}

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.E(op, apperr.NotFound, ErrNotFound)
		}
		return nil, apperr.E(op, apperr.Internal, err)
	}
	if !link.IsActive || link.Expired(now) {
		return nil, apperr.E(op, apperr.NotFound, ErrNotFound)
	}

	if s.cache != nil {
		if ttl, ok := cacheTTL(link.ExpiresAt, now, s.cacheTTL); ok {
			_ = s.cache.Set(ctx, code, CachedLink{
				LinkID:      link.ID,
				OriginalURL: link.OriginalURL,
				ExpiresAt:   link.ExpiresAt,
				IsActive:    link.IsActive,
			}, ttl)
		}
	}

	return &Resolution{LinkID: link.ID, OriginalURL: link.OriginalURL}, nil
}

// GetStats reads the click aggregate for code. Stats stay readable after a
// link expires or is deactivated.
func (s *Service) GetStats(ctx context.Context, code string) (*LinkStats, error) {
	const op = "links.Service.GetStats"

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.E(op, apperr.NotFound, ErrNotFound)
	}

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.E(op, apperr.NotFound, ErrNotFound)
		}
		return nil, apperr.E(op, apperr.Internal, err)
	}

	count, lastAt, err := s.stats.StatsByLinkID(ctx, link.ID)
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, err)
	}

	return &LinkStats{
		Code:          link.Code,
		TotalClicks:   count,
		LastClickedAt: lastAt,
	}, nil
}

// cacheTTL bounds a cache entry by the link's own expiry. ok is false when
// the link must not be cached at all.
func cacheTTL(expiresAt *time.Time, now time.Time, fallback time.Duration) (time.Duration, bool) {
	if expiresAt == nil {
		return fallback, true
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	seconds := max(int64(remaining/time.Second), 1)
	return time.Duration(seconds) * time.Second, true
}

func validateAndNormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}

	return u.String(), nil
}
