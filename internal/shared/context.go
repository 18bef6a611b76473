package shared

import (
	"context"
	"strconv"
)

type sessionContextKey struct{}

// ContextWithSession attaches the request session. Installed by the
// session middleware before any handler runs.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the request session, or nil outside the
// middleware chain.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// CurrentUserID returns the signed-in user's ID, or 0 for anonymous
// requests. Handlers use it as the audit actor.
func CurrentUserID(ctx context.Context) int64 {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
