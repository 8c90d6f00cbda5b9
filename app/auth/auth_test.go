package auth

import (
	"context"
	"testing"
	"time"

	"svyasa/app/repositories/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse battery staple"
)

func newTestService(t *testing.T) (*Service, *mock.SessionRepository) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	sessions := mock.NewSessionRepository()
	svc, err := NewService(Config{
		AdminEmail:        testEmail,
		AdminPasswordHash: string(hash),
		JWTSecret:         []byte("test-secret"),
		SessionTTL:        time.Hour,
	}, sessions)
	require.NoError(t, err)
	return svc, sessions
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(Config{AdminEmail: testEmail}, mock.NewSessionRepository())
	assert.Error(t, err)
}

func TestNewServiceDefaultTTL(t *testing.T) {
	svc, err := NewService(Config{JWTSecret: []byte("x")}, mock.NewSessionRepository())
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, svc.cfg.SessionTTL)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: testEmail, password: testPassword},
		{name: "email is case insensitive", email: "  Admin@Example.COM ", password: testPassword},
		{name: "wrong password", email: testEmail, password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "someone@example.com", password: testPassword, wantErr: ErrInvalidCredentials},
		{name: "empty credentials", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			session, err := svc.SignIn(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.ID)
			assert.NotEmpty(t, session.Token)
			assert.Equal(t, testEmail, session.Email)
			assert.Equal(t, time.Hour, session.ExpiresAt.Sub(session.IssuedAt))
		})
	}
}

func TestSignInWithoutConfiguredAdmin(t *testing.T) {
	svc, err := NewService(Config{JWTSecret: []byte("x")}, mock.NewSessionRepository())
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenCarriesSessionID(t *testing.T) {
	svc, _ := newTestService(t)
	session, err := svc.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.ID)
	assert.Equal(t, testEmail, claims.Subject)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	session, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Token, got.Token)
}

func TestAuthenticateRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	session, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	other, err := NewService(Config{JWTSecret: []byte("other-secret")}, mock.NewSessionRepository())
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: session.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})
	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})
	t.Run("wrong signature", func(t *testing.T) {
		_, err := other.Authenticate(ctx, session.Token)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})
	t.Run("unsigned token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, unsigned)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})
	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()
		_, err := svc.Authenticate(ctx, session.Token)
		assert.ErrorIs(t, err, ErrSessionInvalid)
	})
}

func TestSignOutRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t)

	session, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	stored, err := sessions.Get(session.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Token)

	require.NoError(t, svc.SignOut(ctx, session))

	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	assert.NoError(t, svc.SignOut(ctx, nil))
}

func TestCanceledContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SignIn(ctx, testEmail, testPassword)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))

	session := &Session{ID: "abc"}
	assert.Same(t, session, FromContext(WithSession(ctx, session)))
}
