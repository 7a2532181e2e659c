package auth

import "context"

type contextKey struct{}

// AuthContext identifies the signed-in user of a request and the session
// that authenticated it.
type AuthContext struct {
	UserID    int64
	SessionID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// UserID returns the signed-in user's id, or 0 outside RequireAuth.
func UserID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.UserID
}

// SessionID returns the current session's id, or 0 outside RequireAuth.
func SessionID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.SessionID
}
