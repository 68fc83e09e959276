package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	dom "remindme/internal/domain"
	"remindme/internal/feed"
	"remindme/internal/photos"
	"remindme/internal/service"
	"remindme/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	_, verr := validate.Signup("", "", "")
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", verr, http.StatusBadRequest, validate.MsgFillAllFields},
		{"not found", fmt.Errorf("get: %w", service.ErrNotFound), http.StatusNotFound, "not found"},
		{"photo not found", photos.ErrNotFound, http.StatusNotFound, "not found"},
		{"conflict", service.ErrConflict, http.StatusConflict, service.ErrConflict.Error()},
		{"unknown item", service.ErrUnknownItem, http.StatusBadRequest, service.ErrUnknownItem.Error()},
		{"backend", errors.New("rpc error: unavailable"), http.StatusInternalServerError, "rpc error: unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestHomeToResponse(t *testing.T) {
	home := feed.BuildHome([]dom.Reminder{
		{ID: "a", Title: "a", DateLabel: "Today", TimeLabel: "10:00"},
		{ID: "b", Title: "b", DateLabel: "Today", TimeLabel: "08:00", Pinned: true},
	})
	resp := homeToResponse(home)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "b", resp.Items[0].ID)
	require.NotNil(t, resp.Next)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "Today", resp.Groups[0].DateLabel)
	assert.Len(t, resp.Groups[0].Items, 2)

	empty := homeToResponse(feed.BuildHome(nil))
	assert.Nil(t, empty.Next)
	assert.Empty(t, empty.Items)
}
