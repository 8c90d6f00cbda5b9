// Package auth signs the admin in and out. A session is an explicit value
// handed to whatever needs to branch on authorization.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"svyasa/app/models"
	"svyasa/app/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Session is the admin session handed to privileged operations.
type Session = models.Session

// DefaultSessionTTL bounds how long a sign-in stays valid.
const DefaultSessionTTL = 12 * time.Hour

var (
	// ErrInvalidCredentials never says which half of the credential pair was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionInvalid     = errors.New("session is invalid or has expired")
)

// Config holds the single admin identity and token settings.
type Config struct {
	AdminEmail        string
	AdminPasswordHash string
	JWTSecret         []byte
	SessionTTL        time.Duration
}

// Service issues, checks and revokes admin sessions.
type Service struct {
	cfg      Config
	sessions repositories.SessionRepository
	now      func() time.Time
}

// NewService validates cfg and returns a Service backed by sessions.
func NewService(cfg Config, sessions repositories.SessionRepository) (*Service, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &Service{cfg: cfg, sessions: sessions, now: time.Now}, nil
}

// SignIn checks the credential pair and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := s.cfg.AdminEmail != "" &&
		subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.cfg.AdminEmail))) == 1

	// Always run bcrypt so a wrong email costs as much as a wrong password.
	hash := s.cfg.AdminPasswordHash
	if hash == "" {
		hash = unusableHash
	}
	pwErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if !emailOK || pwErr != nil || s.cfg.AdminPasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.Email,
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.sessions.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	session.Token = token
	return session, nil
}

// Authenticate resolves a bearer token to a live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrSessionInvalid
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.cfg.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessions.Get(claims.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Valid(s.now()) {
		return nil, ErrSessionInvalid
	}

	session.Token = token
	return session, nil
}

// SignOut revokes the session. A nil session is a no-op.
func (s *Service) SignOut(ctx context.Context, session *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if err := s.sessions.Delete(session.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// HashPassword produces the bcrypt hash stored in admin.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// unusableHash is compared against when no admin is configured so sign-in
// timing stays uniform.
const unusableHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOa9Ou6oGiHq8.qwV1u6/Vt9iWqg2mdS6"

type sessionKey struct{}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionKey{}).(*Session)
	return session
}
