package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

type contextKey string

type actorKey struct{}

type actor struct {
	userID string
	role   enums.UserRole
}

// WithActor records who is making the request.
func WithActor(ctx context.Context, userID string, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor{userID: userID, role: role})
}

func actorFrom(ctx context.Context) actor {
	if ctx == nil {
		return actor{}
	}
	a, _ := ctx.Value(actorKey{}).(actor)
	return a
}

// UserIDFromContext is empty for guests.
func UserIDFromContext(ctx context.Context) string { return actorFrom(ctx).userID }

func RoleFromContext(ctx context.Context) enums.UserRole { return actorFrom(ctx).role }

// CurrentUserID is nil for guests and for tokens whose subject is not a UUID.
func CurrentUserID(ctx context.Context) *uuid.UUID {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return nil
	}
	return &id
}
