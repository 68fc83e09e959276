package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"remindme/internal/config"
	"remindme/internal/dto"
	"remindme/internal/events"
	"remindme/internal/photos"
	"remindme/internal/repo"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	router *gin.Engine
	broker *events.MemoryBroker
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var cfg config.Config
	cfg.App.Env = "test"
	cfg.App.Version = "v-test"
	cfg.Store.Driver = config.StoreDriverMemory
	require.NoError(t, cfg.Auth.SessionTTL.SetValue("1h"))
	require.NoError(t, cfg.Redis.DefaultTTL.SetValue("60"))

	mem := repo.NewMemoryStore()
	broker := events.NewMemoryBroker()
	deps := Deps{
		Users:     mem.Users(),
		Reminders: mem.Reminders(),
		Shopping:  mem.Shopping(),
		Redis:     rdb,
		Broker:    broker,
		Revisions: events.NewRedisRevisions(rdb),
		Photos:    photos.NewStore(1024, 3),
		Logger:    zap.NewNop(),
	}
	return &testEnv{router: newRouter(cfg, deps), broker: broker}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func (e *testEnv) signup(t *testing.T, email string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{Email: email, Password: "secret1", ConfirmPassword: "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[dto.SessionResponse](t, w)
	require.NotEmpty(t, resp.Token)
	e.token = resp.Token
}

func TestHealthAndVersion(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", decode[map[string]any](t, w)["env"])

	w = e.do(t, http.MethodGet, "/version", nil)
	assert.Equal(t, "v-test", decode[map[string]string](t, w)["version"])

	w = e.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "remindme_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{Email: "ann@example.com", Password: "secret1", ConfirmPassword: "nope12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords do not match.", errorOf(t, w))

	w = e.do(t, http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{Email: "ann", Password: "secret1", ConfirmPassword: "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a valid email address.", errorOf(t, w))

	w = e.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	assert.False(t, decode[dto.SessionStatusResponse](t, w).SignedIn)

	e.signup(t, "ann@example.com")

	w = e.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	status := decode[dto.SessionStatusResponse](t, w)
	assert.True(t, status.SignedIn)
	require.NotNil(t, status.User)
	assert.Equal(t, "ann@example.com", status.User.Email)

	w = e.do(t, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[dto.ProfileResponse](t, w)
	assert.Equal(t, "ann@example.com", profile.Email)
	assert.False(t, profile.MemberSince.IsZero())

	w = e.do(t, http.MethodPost, "/api/v1/auth/signup", dto.SignupRequest{Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "An account with this email already exists.", errorOf(t, w))

	w = e.do(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ann@example.com", Password: "wrong12"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password.", errorOf(t, w))

	w = e.do(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ann@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at least 6 characters.", errorOf(t, w))

	w = e.do(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w = e.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReminderRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "ann@example.com")

	w := e.do(t, http.MethodPost, "/api/v1/reminders", dto.ReminderRequest{Title: " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a title.", errorOf(t, w))

	w = e.do(t, http.MethodPost, "/api/v1/reminders", dto.ReminderRequest{Title: "Dentist", DateLabel: "Tomorrow"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dentist := decode[dto.ReminderResponse](t, w)
	assert.Equal(t, "09:00", dentist.TimeLabel)

	w = e.do(t, http.MethodPost, "/api/v1/reminders", dto.ReminderRequest{Title: "Call mom"})
	require.Equal(t, http.StatusCreated, w.Code)
	call := decode[dto.ReminderResponse](t, w)

	w = e.do(t, http.MethodPost, "/api/v1/reminders/"+dentist.ID+"/pin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ReminderResponse](t, w).Pinned)

	w = e.do(t, http.MethodGet, "/api/v1/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	home := decode[dto.HomeResponse](t, w)
	require.Len(t, home.Items, 2)
	assert.Equal(t, dentist.ID, home.Items[0].ID)
	assert.Len(t, home.Groups, 2)

	w = e.do(t, http.MethodPut, "/api/v1/reminders/"+call.ID, dto.ReminderRequest{Title: "Call dad", Notes: "evening"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Call dad", decode[dto.ReminderResponse](t, w).Title)

	w = e.do(t, http.MethodPost, "/api/v1/reminders/"+call.ID+"/done", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ReminderResponse](t, w).Done)

	w = e.do(t, http.MethodDelete, "/api/v1/reminders/"+call.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodGet, "/api/v1/reminders/"+call.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodDelete, "/api/v1/reminders/"+call.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	other := &testEnv{router: e.router}
	other.signup(t, "bob@example.com")
	w = other.do(t, http.MethodGet, "/api/v1/reminders/"+dentist.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "ann@example.com")

	w := e.do(t, http.MethodPost, "/api/v1/categories/dairy/toggle", dto.ToggleCategoryRequest{Name: "Apples"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/categories/dairy/toggle", dto.ToggleCategoryRequest{Name: "Milk"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	milk := decode[dto.ToggleCategoryResponse](t, w)
	assert.True(t, milk.Added)
	assert.Equal(t, "Dairy", milk.Item.SectionTitle)

	w = e.do(t, http.MethodPost, "/api/v1/categories/produce/toggle", dto.ToggleCategoryRequest{Name: "Apples"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[dto.CategoriesResponse](t, w)
	require.Len(t, cats.Sections, 6)
	assert.True(t, cats.Sections[1].Items[0].Selected)

	w = e.do(t, http.MethodPost, "/api/v1/shopping/"+milk.Item.ID+"/check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.ShoppingItemResponse](t, w).Checked)

	w = e.do(t, http.MethodGet, "/api/v1/shopping", nil)
	list := decode[dto.ShoppingListResponse](t, w)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Apples", list.Items[0].Name)
	assert.Len(t, list.Groups, 2)

	w = e.do(t, http.MethodPost, "/api/v1/categories/dairy/toggle", dto.ToggleCategoryRequest{Name: "Milk"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dto.ToggleCategoryResponse](t, w).Added)

	w = e.do(t, http.MethodDelete, "/api/v1/shopping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ClearShoppingResponse](t, w).Removed)

	w = e.do(t, http.MethodDelete, "/api/v1/shopping/"+milk.Item.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (e *testEnv) upload(t *testing.T, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "note.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestPhotoRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "ann@example.com")

	w := e.upload(t, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.upload(t, append(pngHeader, make([]byte, 2048)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = e.upload(t, pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[dto.PhotoResponse](t, w)
	assert.Equal(t, "image/png", p.ContentType)

	w = e.do(t, http.MethodGet, "/api/v1/photos", nil)
	assert.Len(t, decode[dto.ListPhotosResponse](t, w).Items, 1)

	w = e.do(t, http.MethodGet, "/api/v1/photos/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, w.Body.Bytes())

	w = e.do(t, http.MethodDelete, "/api/v1/photos/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodGet, "/api/v1/photos/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func readFrame(t *testing.T, conn *websocket.Conn) dto.LiveMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg dto.LiveMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLiveStream(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "ann@example.com")
	userID := decode[dto.SessionStatusResponse](t, e.do(t, http.MethodGet, "/api/v1/auth/session", nil)).User.ID

	w := e.do(t, http.MethodPost, "/api/v1/reminders", dto.ReminderRequest{Title: "Existing"})
	require.Equal(t, http.StatusCreated, w.Code)
	existing := decode[dto.ReminderResponse](t, w)

	srv := httptest.NewServer(e.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/live/reminders"
	header := http.Header{"Authorization": []string{"Bearer " + e.token}}

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/live/bogus", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)

	snap := readFrame(t, conn)
	assert.Equal(t, "snapshot", snap.Type)
	require.NotNil(t, snap.Home)
	require.Len(t, snap.Home.Items, 1)
	assert.Equal(t, existing.ID, snap.Home.Items[0].ID)
	assert.Equal(t, 1, e.broker.Subscribers(userID))

	w = e.do(t, http.MethodPost, "/api/v1/reminders", dto.ReminderRequest{Title: "Fresh", Pinned: true})
	require.Equal(t, http.StatusCreated, w.Code)
	fresh := decode[dto.ReminderResponse](t, w)

	msg := readFrame(t, conn)
	assert.Equal(t, "change", msg.Type)
	require.Len(t, msg.Home.Items, 2)
	assert.Equal(t, fresh.ID, msg.Home.Items[0].ID)

	w = e.do(t, http.MethodDelete, "/api/v1/reminders/"+existing.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	msg = readFrame(t, conn)
	require.Len(t, msg.Home.Items, 1)
	assert.Equal(t, fresh.ID, msg.Home.Items[0].ID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return e.broker.Subscribers(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}
