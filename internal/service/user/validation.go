package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/seu-repo/imob-crm/internal/domain"
)

func validateIdentity(name, email string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	return nil
}

func validatePermissions(perms []domain.Permission) error {
	for _, p := range perms {
		if !p.Valid() {
			return fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, p)
		}
	}
	return nil
}

func dedupe(perms []domain.Permission) []domain.Permission {
	out := make([]domain.Permission, 0, len(perms))
	seen := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// grantable fails when the caller hands out a permission it does not hold.
// Only permissions missing from current count, so an editor can still rename
// a colleague who holds more than they do. Calls without an actor come from
// the seed and the CLI and are trusted.
func grantable(ctx context.Context, current, next []domain.Permission) error {
	actor := domain.ActorFrom(ctx)
	if actor == nil {
		return nil
	}
	held := make(map[domain.Permission]struct{}, len(current))
	for _, p := range current {
		held[p] = struct{}{}
	}
	for _, p := range next {
		if _, ok := held[p]; ok {
			continue
		}
		if !actor.Has(p) {
			return fmt.Errorf("%w: cannot grant %q", domain.ErrForbidden, p)
		}
	}
	return nil
}
