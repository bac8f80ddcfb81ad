package domain

import "context"

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID          string
	Name        string
	Role        RoleName
	Permissions []Permission
}

func (a *Actor) Has(p Permission) bool {
	if a == nil {
		return false
	}
	return containsPermission(a.Permissions, p)
}

type actorKey struct{}

// WithActor attaches the caller to ctx.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the caller attached to ctx, or nil.
func ActorFrom(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}

// ActorID returns the caller id or "system" when no caller is attached.
func ActorID(ctx context.Context) string {
	if a := ActorFrom(ctx); a != nil {
		return a.ID
	}
	return "system"
}
