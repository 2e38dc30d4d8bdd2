package groups

import "time"

// Role is a group role as reported by the roles endpoint
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Rank        int    `json:"rank"`
	MemberCount int    `json:"memberCount"`
}

// MemberRow is one membership row from a role page.
// Created is zero when the page payload does not carry it; callers enrich
// via UserDetails in that case
type MemberRow struct {
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Created     time.Time `json:"created,omitzero"`
}

// User is a partial user document with the fields we use
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Created     time.Time `json:"created"`
}

// AuthenticatedUser is the identity behind the configured credential
type AuthenticatedUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// rolePageWire is the raw pagination envelope
type rolePageWire struct {
	PreviousPageCursor string      `json:"previousPageCursor"`
	NextPageCursor     string      `json:"nextPageCursor"`
	Data               []MemberRow `json:"data"`
}

// rolesWire is the raw roles envelope
type rolesWire struct {
	GroupID int64  `json:"groupId"`
	Roles   []Role `json:"roles"`
}
