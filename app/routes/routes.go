package routes

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"svyasa/app/auth"
	"svyasa/app/changefeed"
	"svyasa/app/controllers"
	"svyasa/app/middleware"
	"svyasa/app/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies is everything the router wires into its controllers.
type Dependencies struct {
	PostService    *services.PostService
	CommentService *services.CommentService
	AuthService    *auth.Service
	Feed           changefeed.Feed
	PollInterval   time.Duration
	// AdminPath is the absolute prefix of the hidden admin surface.
	AdminPath     string
	SecureCookies bool
	Logger        *zap.Logger
	// Ping backs /healthz. Nil means always healthy.
	Ping func() error
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID(log))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.OptionalSession(deps.AuthService))

	// mux skips Use middleware for unmatched requests, so these carry their own.
	unmatched := func(h http.HandlerFunc) http.Handler {
		return middleware.RequestID(log)(middleware.Logger(h))
	}
	methodNotAllowedHandler := unmatched(methodNotAllowed)
	router.NotFoundHandler = unmatched(notFound)
	router.MethodNotAllowedHandler = methodNotAllowedHandler

	postController := controllers.NewPostController(deps.PostService)
	commentController := controllers.NewCommentController(deps.CommentService)
	adminController := controllers.NewAdminController(deps.AuthService, deps.PostService, deps.SecureCookies)
	feedController := controllers.NewFeedController(deps.Feed, deps.PollInterval)

	router.HandleFunc("/healthz", healthz(deps.Ping)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Admin routes are registered before /api so a prefix under /api wins.
	admin := router.PathPrefix(strings.TrimRight(deps.AdminPath, "/")).Subrouter()
	admin.Use(middleware.ContentTypeJSON)
	admin.MethodNotAllowedHandler = methodNotAllowedHandler
	admin.HandleFunc("/session", adminController.SignIn).Methods(http.MethodPost)
	admin.HandleFunc("/session", adminController.Current).Methods(http.MethodGet)
	admin.Handle("/session", requireSession(adminController.SignOut)).Methods(http.MethodDelete)
	admin.Handle("/dashboard", requireSession(adminController.Dashboard)).Methods(http.MethodGet)
	admin.Handle("/posts/{id}", requireSession(postController.Delete)).Methods(http.MethodDelete)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.MethodNotAllowedHandler = methodNotAllowedHandler

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.MethodNotAllowedHandler = methodNotAllowedHandler
	posts.HandleFunc("", postController.Index).Methods(http.MethodGet)
	posts.HandleFunc("", postController.Create).Methods(http.MethodPost)
	posts.HandleFunc("/{id}", postController.Show).Methods(http.MethodGet)
	posts.Handle("/{id}", requireSession(postController.Delete)).Methods(http.MethodDelete)

	// Comments API endpoints
	posts.HandleFunc("/{postId}/comments", commentController.Index).Methods(http.MethodGet)
	posts.HandleFunc("/{postId}/comments", commentController.Create).Methods(http.MethodPost)
	posts.HandleFunc("/{postId}/comments/count", commentController.Count).Methods(http.MethodGet)

	api.HandleFunc("/feed", feedController.Subscribe).Methods(http.MethodGet)

	return router
}

// StartServer builds the HTTP server for addr. Callers own ListenAndServe and
// Shutdown.
func StartServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func requireSession(h http.HandlerFunc) http.Handler {
	return middleware.RequireSession(h)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api") {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	http.NotFound(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func healthz(ping func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			if err := ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
