package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"svyasa/app/auth"
	"svyasa/app/avatars"
	"svyasa/app/config"
	"svyasa/app/logger"
	"svyasa/app/moderation"
	"svyasa/app/repositories"
	"svyasa/app/routes"
	"svyasa/app/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := logger.Initialize(cfg.Log.Level, cfg.Log.File)
			defer logger.Close()
			for _, warning := range cfg.Warnings() {
				log.Warn("Configuration warning", zap.String("detail", warning))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.HTTP.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Addr, err)
			}
			return Serve(ctx, cfg, log, ln)
		},
	}
}

// application is the wired service graph shared by serve and seed.
type application struct {
	posts    *services.PostService
	comments *services.CommentService
	auth     *auth.Service
}

func newApplication(cfg *config.Config, store *repositories.Store) (*application, error) {
	terms, err := moderation.LoadTerms(cfg.Moderation.TermsFile)
	if err != nil {
		return nil, err
	}
	filter := moderation.NewFilter(terms.Terms())
	mapper := avatars.NewMapper(cfg.Avatars.BaseURL)

	authService, err := auth.NewService(auth.Config{
		AdminEmail:        cfg.Admin.Email,
		AdminPasswordHash: cfg.Admin.PasswordHash,
		JWTSecret:         []byte(cfg.Auth.JWTSecret),
		SessionTTL:        cfg.Auth.SessionTTL,
	}, store.Sessions)
	if err != nil {
		return nil, err
	}

	return &application{
		posts:    services.NewPostService(store.Posts, store.Comments, filter, mapper, cfg.Posts.Lifetime),
		comments: services.NewCommentService(store.Comments, store.Posts, filter, mapper),
		auth:     authService,
	}, nil
}

// Serve runs the HTTP server on ln until ctx is done, then shuts down
// gracefully. Open feed websockets are closed when shutdown begins.
func Serve(ctx context.Context, cfg *config.Config, log *zap.Logger, ln net.Listener) error {
	store, err := openStore(cfg, log)
	if err != nil {
		ln.Close()
		return err
	}
	defer store.Close()

	app, err := newApplication(cfg, store)
	if err != nil {
		ln.Close()
		return err
	}

	router := routes.SetupRoutes(routes.Dependencies{
		PostService:    app.posts,
		CommentService: app.comments,
		AuthService:    app.auth,
		Feed:           store.Feed,
		PollInterval:   cfg.Feed.PollInterval,
		AdminPath:      cfg.Admin.Path,
		SecureCookies:  cfg.IsProduction(),
		Logger:         log,
		Ping:           store.Ping,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := routes.StartServer(cfg.HTTP.Addr, router)
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }
	srv.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info("Server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("db", store.Path()),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
