package userctx

import (
	"context"
	"net/http"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

// FromRequest returns the user resolved by the auth middleware.
func FromRequest(r *http.Request) (string, bool) {
	return GetUserID(r.Context())
}
