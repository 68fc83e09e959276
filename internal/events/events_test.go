package events

import (
	"context"
	"testing"
	"time"

	dom "remindme/internal/domain"
	"remindme/internal/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.C():
		require.True(t, ok, "subscription channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestMemoryBroker(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers only to the owning user", func(t *testing.T) {
		b := NewMemoryBroker()
		alice, err := b.Subscribe(ctx, "alice")
		require.NoError(t, err)
		defer alice.Close()
		bob, err := b.Subscribe(ctx, "bob")
		require.NoError(t, err)
		defer bob.Close()

		require.NoError(t, b.Publish(ctx, "alice", Change{Collection: CollectionReminders, Kind: KindDelete, DocID: "r1", Rev: 3}))

		got := receive(t, alice)
		assert.Equal(t, "r1", got.DocID)
		assert.Equal(t, int64(3), got.Rev)
		assert.Empty(t, bob.C())
	})

	t.Run("close unregisters and is idempotent", func(t *testing.T) {
		b := NewMemoryBroker()
		sub, err := b.Subscribe(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 1, b.Subscribers("alice"))

		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())
		assert.Equal(t, 0, b.Subscribers("alice"))

		_, ok := <-sub.C()
		assert.False(t, ok)
		require.NoError(t, b.Publish(ctx, "alice", Change{DocID: "x"}))
	})

	t.Run("full subscriber is dropped instead of blocking", func(t *testing.T) {
		b := NewMemoryBroker()
		stuck, err := b.Subscribe(ctx, "alice")
		require.NoError(t, err)
		defer stuck.Close()
		live, err := b.Subscribe(ctx, "alice")
		require.NoError(t, err)
		defer live.Close()
		dropped := testutil.ToFloat64(metrics.SubscribersDropped)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 1; i <= subscriptionBuffer+1; i++ {
				_ = b.Publish(ctx, "alice", Change{DocID: "r1", Rev: int64(i)})
				if i <= subscriptionBuffer {
					<-live.C()
				}
			}
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publish blocked on a full subscriber")
		}

		assert.Equal(t, 1, b.Subscribers("alice"))
		assert.Equal(t, dropped+1, testutil.ToFloat64(metrics.SubscribersDropped))
		n := 0
		for range stuck.C() {
			n++
		}
		assert.Equal(t, subscriptionBuffer, n, "buffered changes drain before the channel closes")
		assert.Equal(t, int64(subscriptionBuffer+1), receive(t, live).Rev)
	})
}

func TestMemoryRevisions(t *testing.T) {
	r := NewMemoryRevisions()
	ctx := context.Background()
	a1, _ := r.Next(ctx, "alice")
	a2, _ := r.Next(ctx, "alice")
	b1, _ := r.Next(ctx, "bob")
	assert.Equal(t, int64(1), a1)
	assert.Equal(t, int64(2), a2)
	assert.Equal(t, int64(1), b1)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisBroker(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	b := NewRedisBroker(rdb)

	sub, err := b.Subscribe(ctx, "alice")
	require.NoError(t, err)

	item := &dom.ShoppingItem{ID: "i1", Name: "Milk", SectionID: "dairy", SectionTitle: "Dairy", Rev: 7}
	require.NoError(t, b.Publish(ctx, "alice", Change{
		Collection: CollectionShopping,
		Kind:       KindUpsert,
		DocID:      "i1",
		Rev:        7,
		Item:       item,
	}))

	got := receive(t, sub)
	assert.Equal(t, CollectionShopping, got.Collection)
	assert.Equal(t, KindUpsert, got.Kind)
	require.NotNil(t, got.Item)
	assert.Equal(t, "Milk", got.Item.Name)

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}

func TestRedisRevisions(t *testing.T) {
	ctx := context.Background()
	r := NewRedisRevisions(newTestRedis(t))

	first, err := r.Next(ctx, "alice")
	require.NoError(t, err)
	second, err := r.Next(ctx, "alice")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestIsValidCollection(t *testing.T) {
	assert.True(t, IsValidCollection("reminders"))
	assert.True(t, IsValidCollection("shoppingList"))
	assert.False(t, IsValidCollection("users"))
}
