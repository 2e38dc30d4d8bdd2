package domain

import (
	"context"

	"rankbot/internal/adapters/groups"
)

// RunnerPort is the public port exposed by the module (what main calls)
type RunnerPort interface {
	Run(ctx context.Context) (Summary, error)
}

// GroupsPort is everything ranker needs from the remote group-management
// service. All network I/O for the run flows through this one seam
type GroupsPort interface {
	// Verify checks the configured credential before any other call
	Verify(ctx context.Context) (groups.AuthenticatedUser, error)

	// GroupRoles lists every role of the group for name resolution
	GroupRoles(ctx context.Context, groupID int64) ([]Role, error)

	// RolePage fetches one membership page; empty returned cursor ends the role
	RolePage(ctx context.Context, groupID, roleID int64, cursor string) ([]MemberRow, string, error)

	// UserDetails backfills the account created timestamp when a page row lacks it
	UserDetails(ctx context.Context, userID int64) (groups.User, error)

	// SetMemberRole applies one role change
	SetMemberRole(ctx context.Context, groupID, userID, roleID int64) error
}
