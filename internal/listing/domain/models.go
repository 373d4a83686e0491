package domain

import (
	"strings"
	"time"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// Status is the moderation status of a listing.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusDeleted  Status = "deleted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDeleted:
		return true
	}
	return false
}

// PriceType describes how the price should be read.
type PriceType string

const (
	PriceFixed      PriceType = "fixed"
	PriceNegotiable PriceType = "negotiable"
	PriceOnRequest  PriceType = "on_request"
)

// Post is a classified listing.
type Post struct {
	ID              int64
	UserID          int64
	CategoryID      int64
	SubCategoryID   *int64
	Title           string
	Description     string
	Price           *float64
	PriceType       PriceType
	ContactName     string
	ContactPhone    string
	StateID         *int64
	DistrictID      *int64
	TalukaID        *int64
	VillageID       *int64
	Condition       string
	Brand           string
	Status          Status
	IsFeatured      bool
	IsUrgent        bool
	RejectionReason string
	ViewCount       int64
	LikeCount       int64
	CommentCount    int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ExpiresAt       *time.Time
}

// State returns the moderation state of the post.
func (p *Post) State() State {
	return State{Status: p.Status, Featured: p.IsFeatured}
}

// Visible reports whether the post appears in the public feed.
func (p *Post) Visible() bool {
	return p.Status == StatusApproved
}

// Validate checks the fields a new submission needs.
func (p *Post) Validate() error {
	if p.UserID <= 0 {
		return errors.BadRequest("post owner is required")
	}
	if p.CategoryID <= 0 {
		return errors.BadRequest("post category is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.BadRequest("post title is required")
	}
	if p.Price != nil && *p.Price < 0 {
		return errors.BadRequest("post price must not be negative")
	}
	return nil
}

// State is the part of a post the lifecycle engine owns.
type State struct {
	Status   Status
	Featured bool
}

// Visible reports whether a post in this state appears in the public feed.
func (s State) Visible() bool {
	return s.Status == StatusApproved
}

func (s State) String() string {
	if s.Featured {
		return string(s.Status) + "+featured"
	}
	return string(s.Status)
}

// PostStats are the post counters shown on the admin dashboard.
type PostStats struct {
	Total    int64 `json:"total"`
	Today    int64 `json:"today"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Deleted  int64 `json:"deleted"`
	Featured int64 `json:"featured"`
}
