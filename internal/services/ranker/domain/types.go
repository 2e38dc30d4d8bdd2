// Package domain holds the core business logic and data structures for ranker
package domain

import (
	"time"

	"rankbot/internal/adapters/groups"
)

// Role re-exports the group role shape used by resolution and scanning
type Role = groups.Role

// MemberRow re-exports the raw membership row shape from the adapter
type MemberRow = groups.MemberRow

// Member is one scanned group member, ready for classification
type Member struct {
	UserID   int64
	Username string
	Created  time.Time
	Role     string // current role name within the group
	RoleID   int64
}

// Action says what the decision engine wants done for a member
type Action uint8

const (
	// ActionNoop means the member already holds the target role
	ActionNoop Action = iota

	// ActionUpdate means the member's role must change to the target
	ActionUpdate
)

// String implements fmt.Stringer for logs
func (a Action) String() string {
	if a == ActionUpdate {
		return "update"
	}
	return "noop"
}

// Decision is the computed transition for one member.
// Exactly one Decision exists per scanned Member
type Decision struct {
	Member       Member
	TargetRole   string
	TargetRoleID int64
	Action       Action
}

// Result is the realized fate of a Decision
type Result uint8

const (
	// ResultApplied means the role change reached the remote service
	ResultApplied Result = iota

	// ResultSkipped covers noops and dry-run holds; no network call happened
	ResultSkipped

	// ResultCancelled means the run was stopped before this update dispatched
	ResultCancelled

	// ResultFailed means the update (or the member's scan enrichment) failed
	ResultFailed
)

// String implements fmt.Stringer for logs
func (r Result) String() string {
	switch r {
	case ResultApplied:
		return "applied"
	case ResultSkipped:
		return "skipped"
	case ResultCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Outcome pairs a Decision with what actually happened to it
type Outcome struct {
	Decision Decision
	Result   Result
	Reason   string // set on failures and cancellations
}

// ScanError records a role whose membership scan could not complete
type ScanError struct {
	Role string
	Err  error
}

// Summary is the run report handed to the presentation layer.
// Counts are a multiset over outcomes; no ordering is implied
type Summary struct {
	RunID   string
	GroupID int64
	DryRun  bool

	Scanned   int
	Updated   int
	Skipped   int
	Cancelled int
	Failed    int

	Failures   []Outcome
	ScanErrors []ScanError

	Started  time.Time
	Finished time.Time
}

// Clean reports whether the run saw no failures of any kind,
// distinguishing "nothing needed to change" from "changes attempted and failed"
func (s Summary) Clean() bool {
	return s.Failed == 0 && len(s.ScanErrors) == 0
}
