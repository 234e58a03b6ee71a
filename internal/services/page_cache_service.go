package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Page groups. A public response is cached under exactly one group, and a
// mutation invalidates every group whose pages can show the changed data.
const (
	PageGroupMovies     = "movies"
	PageGroupGenres     = "genres"
	PageGroupCategories = "categories"
)

var allPageGroups = []string{PageGroupMovies, PageGroupGenres, PageGroupCategories}

// PageInvalidator drops cached public pages after a mutation.
type PageInvalidator interface {
	Invalidate(ctx context.Context, groups ...string)
}

// PageCacheService stores rendered public GET responses in Redis. A nil
// service or a service without a client caches nothing.
type PageCacheService struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger
}

func NewPageCacheService(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *PageCacheService {
	return &PageCacheService{
		client: client,
		ttl:    ttl,
		prefix: "whutmovie:page:",
		logger: logger,
	}
}

func (s *PageCacheService) Enabled() bool {
	return s != nil && s.client != nil
}

// Key derives the storage key of a request URI inside group.
func (s *PageCacheService) Key(group, requestURI string) string {
	sum := sha1.Sum([]byte(requestURI))
	return s.prefix + group + ":" + hex.EncodeToString(sum[:])
}

func (s *PageCacheService) groupKey(group string) string {
	return s.prefix + "group:" + group
}

func (s *PageCacheService) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.Enabled() {
		return nil, false
	}
	body, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Warn("Page cache read failed")
		}
		return nil, false
	}
	return body, true
}

func (s *PageCacheService) Set(ctx context.Context, group, key string, body []byte) {
	if !s.Enabled() {
		return
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, body, s.ttl)
	pipe.SAdd(ctx, s.groupKey(group), key)
	pipe.Expire(ctx, s.groupKey(group), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).WithField("group", group).Warn("Page cache write failed")
	}
}

func (s *PageCacheService) Invalidate(ctx context.Context, groups ...string) {
	if !s.Enabled() {
		return
	}
	for _, group := range groups {
		members, err := s.client.SMembers(ctx, s.groupKey(group)).Result()
		if err != nil {
			s.logger.WithError(err).WithField("group", group).Warn("Page cache invalidation failed")
			continue
		}
		keys := append(members, s.groupKey(group))
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			s.logger.WithError(err).WithField("group", group).Warn("Page cache invalidation failed")
			continue
		}
		s.logger.WithFields(logrus.Fields{"group": group, "pages": len(members)}).Debug("Page cache invalidated")
	}
}

// invalidatePages is a nil-safe helper for services.
func invalidatePages(ctx context.Context, pages PageInvalidator, groups ...string) {
	if pages == nil {
		return
	}
	pages.Invalidate(ctx, groups...)
}
