package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/societyhub/societyhub/internal/shared"
	_ "github.com/societyhub/societyhub/testing"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestLoadRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	r := httptest.NewRequest("GET", "/", nil)
	sess, err := sm.Load(ctx, r)
	require.NoError(t, err)
	sess.SetUser("42")

	w := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, w, r, sess))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	r2 := httptest.NewRequest("GET", "/", nil)
	r2.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, r2)
	require.NoError(t, err)
	require.Equal(t, "42", loaded.User())
	require.Equal(t, sess.ID, loaded.ID)
}

func TestLoadDiscardsUnknownCookieValue(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	// A cookie pointing at no stored payload must not become the new
	// session ID, or a client could choose its own identifier.
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "test_session", Value: "attacker-chosen"})

	sess, err := sm.Load(ctx, r)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotEqual(t, "attacker-chosen", sess.ID)

	// Committing hands the client the regenerated ID.
	w := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, w, r, sess))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sess.ID, cookies[0].Value)
}
