package auth

import (
	"context"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// Actor is the authenticated principal behind a staff or owner request.
type Actor struct {
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	BranchID uuid.UUID `json:"branch_id,omitempty"`
}

func (a Actor) IsOwner() bool {
	return a.Role == RoleOwner
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}

// CanAccessBranch grants owners every branch and staff only their assigned one.
func (a Actor) CanAccessBranch(branchID uuid.UUID) bool {
	switch a.Role {
	case RoleOwner:
		return true
	case RoleStaff:
		return a.BranchID != uuid.Nil && a.BranchID == branchID
	default:
		return false
	}
}

// ScopedBranch returns the branch a listing must be restricted to, or
// uuid.Nil when the actor may see every branch.
func (a Actor) ScopedBranch() uuid.UUID {
	if a.IsOwner() {
		return uuid.Nil
	}
	return a.BranchID
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
