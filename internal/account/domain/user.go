package domain

import (
	"strings"
	"time"
)

// Status is the moderation status of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBanned   Status = "banned"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBanned:
		return true
	}
	return false
}

// User is a portal account as seen by moderation.
type User struct {
	ID          int64      `json:"id"`
	UserName    string     `json:"user_name"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Mobile      string     `json:"mobile"`
	StateID     *int64     `json:"state_id,omitempty"`
	DistrictID  *int64     `json:"district_id,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName is the full name, or the user name when no name is set.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.UserName
}

// Profile is the cached per-user snapshot shown on profile pages and in
// moderation screens.
type Profile struct {
	User          User  `json:"user"`
	TotalPosts    int64 `json:"total_posts"`
	ApprovedPosts int64 `json:"approved_posts"`
	PendingPosts  int64 `json:"pending_posts"`
	TotalViews    int64 `json:"total_views"`
	TotalLikes    int64 `json:"total_likes"`
}

// UserStats are the account counters shown on the admin dashboard.
type UserStats struct {
	Total    int64 `json:"total"`
	Today    int64 `json:"today"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Banned   int64 `json:"banned"`
}

// MonthlyCount is the number of accounts created in one calendar month.
type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}
