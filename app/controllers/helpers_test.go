package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"svyasa/app/auth"
	"svyasa/app/changefeed"
	"svyasa/app/middleware"
	"svyasa/app/repositories/mock"
	"svyasa/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "hunter2hunter2"
)

type testApp struct {
	router      *mux.Router
	hub         *changefeed.Hub
	postRepo    *mock.PostRepository
	commentRepo *mock.CommentRepository
	posts       *services.PostService
	comments    *services.CommentService
	auth        *auth.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	app := &testApp{hub: changefeed.NewHub()}
	app.postRepo = mock.NewPostRepository(app.hub)
	app.commentRepo = mock.NewCommentRepository(app.hub)
	app.posts = services.NewPostService(app.postRepo, app.commentRepo, nil, nil, 0)
	app.comments = services.NewCommentService(app.commentRepo, app.postRepo, nil, nil)
	app.auth, err = auth.NewService(auth.Config{
		AdminEmail:        adminEmail,
		AdminPasswordHash: string(hash),
		JWTSecret:         []byte("controller-test-secret"),
		SessionTTL:        time.Hour,
	}, mock.NewSessionRepository())
	require.NoError(t, err)

	postController := NewPostController(app.posts)
	commentController := NewCommentController(app.comments)
	adminController := NewAdminController(app.auth, app.posts, false)
	feedController := NewFeedController(app.hub, 50*time.Millisecond)

	router := mux.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.OptionalSession(app.auth))

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/posts", postController.Index).Methods(http.MethodGet)
	api.HandleFunc("/posts", postController.Create).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", postController.Show).Methods(http.MethodGet)
	api.Handle("/posts/{id}", middleware.RequireSession(http.HandlerFunc(postController.Delete))).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{postId}/comments", commentController.Index).Methods(http.MethodGet)
	api.HandleFunc("/posts/{postId}/comments", commentController.Create).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}/comments/count", commentController.Count).Methods(http.MethodGet)
	api.HandleFunc("/feed", feedController.Subscribe).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/session", adminController.SignIn).Methods(http.MethodPost)
	admin.Handle("/session", middleware.RequireSession(http.HandlerFunc(adminController.SignOut))).Methods(http.MethodDelete)
	admin.HandleFunc("/session", adminController.Current).Methods(http.MethodGet)
	admin.Handle("/dashboard", middleware.RequireSession(http.HandlerFunc(adminController.Dashboard))).Methods(http.MethodGet)

	app.router = router
	return app
}

func (app *testApp) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	app.router.ServeHTTP(rw, req)
	return rw
}

func (app *testApp) signIn(t *testing.T) string {
	t.Helper()
	rw := app.do(t, http.MethodPost, "/api/admin/session", signInRequest{Email: adminEmail, Password: adminPassword}, "")
	require.Equal(t, http.StatusCreated, rw.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rw *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &v), rw.Body.String())
	return v
}
