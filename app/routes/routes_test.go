package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"svyasa/app/auth"
	"svyasa/app/middleware"
	"svyasa/app/repositories"
	"svyasa/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminPath = "/api/hidden-door"
	testEmail     = "admin@example.com"
	testPassword  = "open sesame"
)

func setupTestRouter(t *testing.T, ping func() error) (*mux.Router, *repositories.Store) {
	t.Helper()

	store, err := repositories.NewStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	authService, err := auth.NewService(auth.Config{
		AdminEmail:        testEmail,
		AdminPasswordHash: string(hash),
		JWTSecret:         []byte("routes-test-secret"),
		SessionTTL:        time.Hour,
	}, store.Sessions)
	require.NoError(t, err)

	if ping == nil {
		ping = store.Ping
	}

	router := SetupRoutes(Dependencies{
		PostService:    services.NewPostService(store.Posts, store.Comments, nil, nil, 0),
		CommentService: services.NewCommentService(store.Comments, store.Posts, nil, nil),
		AuthService:    authService,
		Feed:           store.Feed,
		PollInterval:   time.Minute,
		AdminPath:      testAdminPath,
		Ping:           ping,
	})
	return router, store
}

func request(t *testing.T, router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)
	return rw
}

func TestRoutesEndToEnd(t *testing.T) {
	router, store := setupTestRouter(t, nil)

	rw := request(t, router, http.MethodPost, "/api/posts", map[string]string{
		"nickname": "Anna",
		"content":  "I love someone at college",
	}, "")
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	assert.NotEmpty(t, rw.Header().Get("X-Request-ID"))

	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &post))

	rw = request(t, router, http.MethodPost, "/api/posts/"+post.ID+"/comments", map[string]string{
		"nickname": "Ben",
		"content":  "same",
	}, "")
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())

	rw = request(t, router, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "application/json", rw.Header().Get("Content-Type"))
	assert.Contains(t, rw.Body.String(), post.ID)
	assert.Contains(t, rw.Body.String(), `"comment_count":1`)

	rw = request(t, router, http.MethodGet, "/api/posts/"+post.ID+"/comments/count", nil, "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"count":1}`, rw.Body.String())

	rw = request(t, router, http.MethodPost, "/api/posts", map[string]string{
		"nickname": "Sam",
		"content":  "you should kys",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rw.Code)
	assert.JSONEq(t, `{"error":"Your message contains inappropriate content. Please revise and try again.","kind":"content"}`, rw.Body.String())

	posts, err := store.Posts.ListAll()
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestRoutesAdmin(t *testing.T) {
	router, store := setupTestRouter(t, nil)

	rw := request(t, router, http.MethodPost, "/api/posts", map[string]string{"nickname": "Anna", "content": "hello"}, "")
	require.Equal(t, http.StatusCreated, rw.Code)
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &post))

	rw = request(t, router, http.MethodGet, testAdminPath+"/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = request(t, router, http.MethodPost, "/api/admin-secret-login/session", map[string]string{"email": testEmail, "password": testPassword}, "")
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = request(t, router, http.MethodPost, testAdminPath+"/session", map[string]string{"email": testEmail, "password": testPassword}, "")
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &session))

	rw = request(t, router, http.MethodGet, testAdminPath+"/dashboard", nil, session.Token)
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"total_posts":1`)

	rw = request(t, router, http.MethodDelete, testAdminPath+"/posts/"+post.ID, nil, session.Token)
	assert.Equal(t, http.StatusNoContent, rw.Code)

	_, err := store.Posts.GetByID(post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	rw = request(t, router, http.MethodDelete, testAdminPath+"/session", nil, session.Token)
	assert.Equal(t, http.StatusNoContent, rw.Code)

	rw = request(t, router, http.MethodGet, testAdminPath+"/dashboard", nil, session.Token)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestRoutesNotFoundAndMethod(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rw := request(t, router, http.MethodGet, "/api/nothing", nil, "")
	assert.Equal(t, http.StatusNotFound, rw.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rw.Body.String())

	rw = request(t, router, http.MethodGet, "/elsewhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = request(t, router, http.MethodPut, "/api/posts", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)
}

func TestRoutesMethodNotAllowed(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/posts"},
		{http.MethodPatch, "/api/posts/abc"},
		{http.MethodPut, "/api/posts/abc/comments"},
		{http.MethodPost, "/api/posts/abc/comments/count"},
		{http.MethodPost, "/api/feed"},
		{http.MethodPut, testAdminPath + "/session"},
		{http.MethodPost, testAdminPath + "/dashboard"},
		{http.MethodPost, "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rw := request(t, router, tt.method, tt.path, nil, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)
			assert.JSONEq(t, `{"error":"Method not allowed"}`, rw.Body.String())
			assert.NotEmpty(t, rw.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRoutesUnmatchedCarryRequestID(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/nothing", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-404")
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusNotFound, rw.Code)
	assert.Equal(t, "req-404", rw.Header().Get(middleware.RequestIDHeader))
}

func TestRoutesHealthAndMetrics(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rw := request(t, router, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rw.Body.String())

	rw = request(t, router, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), "svyasa_posts_created_total")

	failing, _ := setupTestRouter(t, func() error { return errors.New("down") })
	rw = request(t, failing, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rw.Code)
}

func TestStartServer(t *testing.T) {
	router, _ := setupTestRouter(t, nil)
	server := StartServer(":0", router)
	assert.Equal(t, ":0", server.Addr)
	assert.NotNil(t, server.Handler)
	assert.NotZero(t, server.ReadHeaderTimeout)
}
