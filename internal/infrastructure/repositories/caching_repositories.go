package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
	"github.com/breachwatch/monitor/internal/core/ports"
)

func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func subscriberIDKey(id int64) string { return "subscriber:id:" + strconv.FormatInt(id, 10) }

func subscriberEmailKey(email string) string { return "subscriber:email:" + email }

// CachingSubscriberRepository decorates a SubscriberRepository with cache-aside
// for single-subscriber reads by id and email. Hash lookups always reach the store.
type CachingSubscriberRepository struct {
	ports.SubscriberRepository
	cache ports.Cache
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCachingSubscriberRepository(inner ports.SubscriberRepository, cache ports.Cache, ttl time.Duration) *CachingSubscriberRepository {
	return &CachingSubscriberRepository{SubscriberRepository: inner, cache: cache, ttl: ttl}
}

// loadSubscriber reads key from cache, falling back to loader with concurrent misses coalesced.
func (c *CachingSubscriberRepository) loadSubscriber(ctx context.Context, key string, loader func() (*subscriber.Subscriber, error)) (*subscriber.Subscriber, error) {
	if v, ok := cacheGet[subscriber.Subscriber](c.cache, ctx, key); ok {
		return v, nil
	}
	res, err, _ := c.sf.Do(key, func() (any, error) {
		s, err := loader()
		if err != nil {
			return nil, err
		}
		c.store(ctx, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s, ok := res.(*subscriber.Subscriber)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return s, nil
}

func (c *CachingSubscriberRepository) store(ctx context.Context, s *subscriber.Subscriber) {
	if s == nil {
		return
	}
	cacheSetSilently(c.cache, ctx, subscriberIDKey(s.ID), s, c.ttl)
	cacheSetSilently(c.cache, ctx, subscriberEmailKey(s.PrimaryEmail), s, c.ttl)
}

func (c *CachingSubscriberRepository) evict(ctx context.Context, subs ...*subscriber.Subscriber) {
	if c.cache == nil {
		return
	}
	keys := make([]string, 0, 2*len(subs))
	for _, s := range subs {
		if s != nil {
			keys = append(keys, subscriberIDKey(s.ID), subscriberEmailKey(s.PrimaryEmail))
		}
	}
	if len(keys) > 0 {
		_ = c.cache.Delete(ctx, keys...)
	}
}

func (c *CachingSubscriberRepository) GetSubscriberByID(ctx context.Context, id int64) (*subscriber.Subscriber, error) {
	return c.loadSubscriber(ctx, subscriberIDKey(id), func() (*subscriber.Subscriber, error) {
		return c.SubscriberRepository.GetSubscriberByID(ctx, id)
	})
}

func (c *CachingSubscriberRepository) GetSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	return c.loadSubscriber(ctx, subscriberEmailKey(email), func() (*subscriber.Subscriber, error) {
		return c.SubscriberRepository.GetSubscriberByEmail(ctx, email)
	})
}

func (c *CachingSubscriberRepository) UpsertSubscriber(ctx context.Context, s *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	saved, err := c.SubscriberRepository.UpsertSubscriber(ctx, s)
	if err != nil {
		return nil, err
	}
	c.store(ctx, saved)
	return saved, nil
}

func (c *CachingSubscriberRepository) SetBreachesLastShownNow(ctx context.Context, subscriberID int64) (*subscriber.Subscriber, error) {
	updated, err := c.SubscriberRepository.SetBreachesLastShownNow(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, updated)
	return updated, nil
}

func (c *CachingSubscriberRepository) DeleteSubscriberByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	removed, err := c.SubscriberRepository.DeleteSubscriberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		_ = c.cache.Delete(ctx, subscriberEmailKey(email))
	}
	c.evict(ctx, removed)
	return removed, nil
}

func (c *CachingSubscriberRepository) DeleteSubscriberByToken(ctx context.Context, token uuid.UUID) (*subscriber.Subscriber, error) {
	removed, err := c.SubscriberRepository.DeleteSubscriberByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, removed)
	return removed, nil
}

func (c *CachingSubscriberRepository) DeleteUnverified(ctx context.Context, createdBefore time.Time) (*subscriber.PurgeResult, error) {
	res, err := c.SubscriberRepository.DeleteUnverified(ctx, createdBefore)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, res.Subscribers...)
	return res, nil
}
