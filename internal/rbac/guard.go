package rbac

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// Guard is the single authorization choke point. Every mutating operation
// resolves its caller through here before touching persisted state.
type Guard struct {
	registry *Registry
}

// NewGuard constructs a Guard over the registry.
func NewGuard(registry *Registry) *Guard {
	return &Guard{registry: registry}
}

// Require resolves the caller from the request context and checks the named
// capability. It returns ErrUnauthorized when no valid session exists and
// ErrForbidden when the caller's role lacks the capability.
func (g *Guard) Require(ctx context.Context, capability string) (Actor, error) {
	actor, err := g.resolve(ctx)
	if err != nil {
		return Actor{}, err
	}
	ok, err := g.registry.RoleHas(ctx, actor.Role, capability)
	if err != nil {
		return Actor{}, err
	}
	if !ok {
		return Actor{}, fmt.Errorf("%w: role %s lacks %s", shared.ErrForbidden, actor.Role, capability)
	}
	return actor, nil
}

// RequireAnyRole checks coarse role membership instead of a named
// capability. Used by reporting-style reads.
func (g *Guard) RequireAnyRole(ctx context.Context, roles ...Role) (Actor, error) {
	actor, err := g.resolve(ctx)
	if err != nil {
		return Actor{}, err
	}
	for _, r := range roles {
		if actor.Role == r {
			return actor, nil
		}
	}
	return Actor{}, fmt.Errorf("%w: role %s not permitted", shared.ErrForbidden, actor.Role)
}

func (g *Guard) resolve(ctx context.Context) (Actor, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return Actor{}, shared.ErrUnauthorized
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Actor{}, shared.ErrUnauthorized
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Actor{}, shared.ErrUnauthorized
	}
	role := Role(sess.Role())
	if !ValidRole(role) {
		return Actor{}, shared.ErrUnauthorized
	}
	return Actor{UserID: id, Role: role}, nil
}
