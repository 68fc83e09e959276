package cache

import (
	"context"
	"testing"
	"time"

	dom "remindme/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewListCache(rdb, time.Minute), mr
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	got, err := c.GetReminders(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got, "miss")

	gen, err := c.RemindersGen(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, c.SetReminders(ctx, "alice", gen, []dom.Reminder{{ID: "r1", Title: "Dentist", Pinned: true}}))
	got, err = c.GetReminders(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dentist", got[0].Title)
	assert.True(t, got[0].Pinned)

	other, err := c.GetReminders(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, other, "per user")

	require.NoError(t, c.InvalidateReminders(ctx, "alice"))
	got, err = c.GetReminders(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	t.Run("ttl", func(t *testing.T) {
		gen, err := c.RemindersGen(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, c.SetReminders(ctx, "alice", gen, nil))
		got, err := c.GetReminders(ctx, "alice")
		require.NoError(t, err)
		assert.NotNil(t, got, "empty list is a hit")
		mr.FastForward(2 * time.Minute)
		got, err = c.GetReminders(ctx, "alice")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestShopping(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	gen, err := c.ShoppingGen(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, c.SetShopping(ctx, "alice", gen, []dom.ShoppingItem{{ID: "i1", Name: "Milk", SectionID: "dairy"}}))
	got, err := c.GetShopping(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dairy", got[0].SectionID)

	require.NoError(t, c.InvalidateShopping(ctx, "alice"))
	got, err = c.GetShopping(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFillAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	// A reader takes the generation, then a writer invalidates before the
	// reader stores what it loaded.
	gen, err := c.RemindersGen(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, c.InvalidateReminders(ctx, "alice"))

	err = c.SetReminders(ctx, "alice", gen, []dom.Reminder{{ID: "r1", Title: "deleted"}})
	assert.ErrorIs(t, err, ErrInvalidated)
	got, err := c.GetReminders(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	gen, err = c.RemindersGen(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, c.SetReminders(ctx, "alice", gen, []dom.Reminder{}))

	t.Run("shopping", func(t *testing.T) {
		gen, err := c.ShoppingGen(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, c.InvalidateShopping(ctx, "alice"))
		assert.ErrorIs(t, c.SetShopping(ctx, "alice", gen, nil), ErrInvalidated)
	})

	t.Run("reminders invalidation leaves shopping fill alone", func(t *testing.T) {
		gen, err := c.ShoppingGen(ctx, "bob")
		require.NoError(t, err)
		require.NoError(t, c.InvalidateReminders(ctx, "bob"))
		assert.NoError(t, c.SetShopping(ctx, "bob", gen, nil))
	})
}
