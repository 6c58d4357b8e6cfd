package shared

import (
	"context"

	"github.com/branchpulse/branchpulse/internal/directory"
)

type identityContextKey struct{}

// ContextWithIdentity stores the authenticated staff member in context.
// Authentication itself happens upstream; by the time a request reaches a
// handler the identity has been resolved against the directory.
func ContextWithIdentity(ctx context.Context, staff directory.StaffMember) context.Context {
	return context.WithValue(ctx, identityContextKey{}, staff)
}

// IdentityFromContext extracts the staff member from context.
func IdentityFromContext(ctx context.Context) (directory.StaffMember, bool) {
	staff, ok := ctx.Value(identityContextKey{}).(directory.StaffMember)
	return staff, ok
}
