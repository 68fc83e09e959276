package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "remindme:changes:"
	revKeyPrefix  = "remindme:rev:"
)

// RedisBroker publishes changes on a Redis Pub/Sub channel per user, so every
// API instance sees every write.
type RedisBroker struct {
	rdb *redis.Client
}

// NewRedisBroker returns a broker on rdb.
func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, userID string, c Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	return b.rdb.Publish(ctx, channelPrefix+userID, data).Err()
}

// Subscribe blocks until Redis confirms the subscription.
func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, channelPrefix+userID)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}
	s := &redisSubscription{
		ps:   ps,
		out:  make(chan Change, 64),
		done: make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	out  chan Change
	done chan struct{}
	once sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		var c Change
		if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
			continue
		}
		select {
		case s.out <- c:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) C() <-chan Change { return s.out }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

// RedisRevisions keeps the per-user revision counter in Redis.
type RedisRevisions struct {
	rdb *redis.Client
}

func NewRedisRevisions(rdb *redis.Client) *RedisRevisions {
	return &RedisRevisions{rdb: rdb}
}

func (r *RedisRevisions) Next(ctx context.Context, userID string) (int64, error) {
	return r.rdb.Incr(ctx, revKeyPrefix+userID).Result()
}
