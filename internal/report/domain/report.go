package domain

import "time"

// Status is the review status of a report.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved:
		return true
	}
	return false
}

// Report is a user's complaint about a listing, queued for staff review.
type Report struct {
	ID          int64      `json:"id"`
	PostID      int64      `json:"post_id"`
	ReportedBy  int64      `json:"reported_by"`
	Reason      string     `json:"reason"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	ReviewedBy  *int64     `json:"reviewed_by,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ReportStats are the queue counters shown on the admin dashboard.
type ReportStats struct {
	Pending  int64 `json:"pending"`
	Reviewed int64 `json:"reviewed"`
	Resolved int64 `json:"resolved"`
	Today    int64 `json:"today"`
}

// ReportFilter narrows the report list. A zero filter lists every report.
type ReportFilter struct {
	Status Status
	PostID int64
}
