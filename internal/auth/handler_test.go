package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/societyhub/societyhub/internal/auth"
	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/shared"
	_ "github.com/societyhub/societyhub/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	caps, err := authz.NewCache(16)
	require.NoError(t, err)
	return auth.NewHandler(nil, auth.NewService(repo), sessionManager, caps), sessionManager
}

func loginBody() *strings.Reader {
	return strings.NewReader(`{"email":"user@test.local","password":"correctpass"}`)
}

func activeUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           1,
		Email:        "user@test.local",
		Name:         "Test User",
		PasswordHash: string(hashed),
		Role:         "customer_admin",
		Permissions:  []string{"view_analytics"},
		IsActive:     true,
	}
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx), sess
}

func TestLoginSuccess(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: activeUser(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", loginBody())
	req, sess := withSession(t, sm, req)
	res := httptest.NewRecorder()

	router := newRouter(handler)
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "1", sess.User())

	var body struct {
		Role         string `json:"role"`
		Capabilities struct {
			IsAdmin          bool `json:"is_admin"`
			CanManageUsers   bool `json:"can_manage_users"`
			CanViewAnalytics bool `json:"can_view_analytics"`
		} `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "customer_admin", body.Role)
	require.True(t, body.Capabilities.IsAdmin)
	require.True(t, body.Capabilities.CanManageUsers)
	require.True(t, body.Capabilities.CanViewAnalytics)
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: activeUser(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"user@test.local","password":"wrongpass1"}`))
	req, sess := withSession(t, sm, req)
	res := httptest.NewRecorder()

	newRouter(handler).ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t)
	user.IsActive = false
	handler, sm := newAuthHandler(t, &stubRepo{user: user})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", loginBody())
	req, _ = withSession(t, sm, req)
	res := httptest.NewRecorder()

	newRouter(handler).ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestMeUnauthenticatedGetsAnonymousCapabilities(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req, _ = withSession(t, sm, req)
	res := httptest.NewRecorder()

	newRouter(handler).ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Capabilities map[string]bool `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	for name, granted := range body.Capabilities {
		require.False(t, granted, "anonymous capability %q should be false", name)
	}
}

func newRouter(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return r
}
