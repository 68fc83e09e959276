package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "remindme/internal/domain"
	"remindme/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	keyReminders = "reminders:"
	keyShopping  = "shopping:"
	// keyGen counts invalidations per list so a fill can tell whether a write
	// landed while it was reading the store.
	keyGen = "cachegen:"
)

// ErrInvalidated is returned by a fill whose list was invalidated after its
// generation was read. Nothing is stored.
var ErrInvalidated = errors.New("list invalidated during fill")

// ListCache caches each user's reminder and shopping lists in Redis.
// Writers invalidate; readers fill on miss. A fill reads the list's
// generation before loading from the store and stores only if the
// generation is unchanged.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListCache returns a new ListCache.
func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

// GetReminders returns cached reminders or nil if miss.
func (c *ListCache) GetReminders(ctx context.Context, userID string) ([]dom.Reminder, error) {
	return getList[dom.Reminder](ctx, c.rdb, "reminders", keyReminders+userID)
}

// RemindersGen returns the invalidation generation of userID's reminders.
// Read it before loading the list from the store.
func (c *ListCache) RemindersGen(ctx context.Context, userID string) (int64, error) {
	return c.gen(ctx, keyGen+keyReminders+userID)
}

// SetReminders stores the list unless the reminders were invalidated since
// gen was read, in which case it returns ErrInvalidated.
func (c *ListCache) SetReminders(ctx context.Context, userID string, gen int64, list []dom.Reminder) error {
	if list == nil {
		list = []dom.Reminder{}
	}
	return c.setIfGen(ctx, keyReminders+userID, keyGen+keyReminders+userID, gen, list)
}

// GetShopping returns cached shopping items or nil if miss.
func (c *ListCache) GetShopping(ctx context.Context, userID string) ([]dom.ShoppingItem, error) {
	return getList[dom.ShoppingItem](ctx, c.rdb, "shopping", keyShopping+userID)
}

// ShoppingGen returns the invalidation generation of userID's shopping list.
func (c *ListCache) ShoppingGen(ctx context.Context, userID string) (int64, error) {
	return c.gen(ctx, keyGen+keyShopping+userID)
}

// SetShopping stores the list unless it was invalidated since gen was read.
func (c *ListCache) SetShopping(ctx context.Context, userID string, gen int64, list []dom.ShoppingItem) error {
	if list == nil {
		list = []dom.ShoppingItem{}
	}
	return c.setIfGen(ctx, keyShopping+userID, keyGen+keyShopping+userID, gen, list)
}

// InvalidateReminders drops the cached reminders of userID (on write).
func (c *ListCache) InvalidateReminders(ctx context.Context, userID string) error {
	return c.invalidate(ctx, keyReminders+userID, keyGen+keyReminders+userID)
}

// InvalidateShopping drops the cached shopping list of userID (on write).
func (c *ListCache) InvalidateShopping(ctx context.Context, userID string) error {
	return c.invalidate(ctx, keyShopping+userID, keyGen+keyShopping+userID)
}

func (c *ListCache) invalidate(ctx context.Context, key, genKey string) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, key)
		return nil
	})
	return err
}

func (c *ListCache) gen(ctx context.Context, genKey string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// setIfGen writes key under WATCH on genKey, so an invalidation between the
// generation check and EXEC aborts the write too.
func (c *ListCache) setIfGen(ctx context.Context, key, genKey string, gen int64, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrInvalidated
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrInvalidated
	}
	return err
}

func getList[T any](ctx context.Context, rdb *redis.Client, name, key string) ([]T, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	var list []T
	if err := json.Unmarshal(b, &list); err != nil {
		metrics.CacheLookups.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
	return list, nil
}
