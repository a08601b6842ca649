package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

const (
	keyNamespace = "quotes"
	versionKey   = keyNamespace + ":suggest:version"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Incr(context.Context, string) *redis.IntCmd
}

// Suggestions caches autocomplete lookups in Redis. Entries are keyed by a
// version counter, so invalidation is a single INCR and stale entries age out
// through their TTL. Redis failures are logged and behave like a miss.
type Suggestions struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func New(ctx context.Context, url string, ttl time.Duration, log *logger.Logger) (*Suggestions, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Suggestions{store: raw, raw: raw, ttl: ttl, log: log}, nil
}

func (s *Suggestions) Get(ctx context.Context, field quote.ItemField, search string) ([]string, bool) {
	key, err := s.key(ctx, field, search)
	if err != nil {
		return nil, false
	}
	raw, err := s.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.log.WarnErr(ctx, "cache.suggestions.get_failed", err)
		return nil, false
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		s.log.WarnErr(ctx, "cache.suggestions.decode_failed", err)
		return nil, false
	}
	return values, true
}

func (s *Suggestions) Set(ctx context.Context, field quote.ItemField, search string, values []string) {
	key, err := s.key(ctx, field, search)
	if err != nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.log.WarnErr(ctx, "cache.suggestions.set_failed", err)
	}
}

func (s *Suggestions) Invalidate(ctx context.Context) {
	if err := s.store.Incr(ctx, versionKey).Err(); err != nil {
		s.log.WarnErr(ctx, "cache.suggestions.invalidate_failed", err)
	}
}

func (s *Suggestions) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

func (s *Suggestions) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

func (s *Suggestions) key(ctx context.Context, field quote.ItemField, search string) (string, error) {
	version, err := s.store.Get(ctx, versionKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		version = "0"
	case err != nil:
		s.log.WarnErr(ctx, "cache.suggestions.version_failed", err)
		return "", err
	}
	return fmt.Sprintf("%s:suggest:v%s:%s:%s", keyNamespace, version, field, strings.ToLower(search)), nil
}
