package auth

import (
	"context"

	"booktracker/internal/models"
)

type userCtxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFrom returns the authenticated user attached by the auth middleware.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*models.User)
	return u, ok
}
