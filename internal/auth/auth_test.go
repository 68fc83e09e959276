package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour), mr
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	id, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, id, 32)

	userID, ok, err := store.GetUserID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	t.Run("expires after ttl", func(t *testing.T) {
		other, err := store.Create(ctx, "user-2")
		require.NoError(t, err)
		mr.FastForward(2 * time.Hour)
		_, ok, err := store.GetUserID(ctx, other)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("use extends the session", func(t *testing.T) {
		sid, err := store.Create(ctx, "user-4")
		require.NoError(t, err)
		mr.FastForward(45 * time.Minute)
		_, ok, err := store.GetUserID(ctx, sid)
		require.NoError(t, err)
		require.True(t, ok)
		mr.FastForward(45 * time.Minute)
		_, ok, err = store.GetUserID(ctx, sid)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		sid, err := store.Create(ctx, "user-3")
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, sid))
		_, ok, err := store.GetUserID(ctx, sid)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, _ := newTestStore(t)
	sid, err := store.Create(context.Background(), "user-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireSession(store), func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sid) }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sid}) }, http.StatusOK, "user-1"},
		{"unknown session", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
