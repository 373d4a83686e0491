package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event type names published on the event bus.
const (
	EventPostSubmitted   = "post.submitted"
	EventPostApproved    = "post.approved"
	EventPostRejected    = "post.rejected"
	EventPostFeatured    = "post.featured"
	EventPostUnfeatured  = "post.unfeatured"
	EventPostDeleted     = "post.deleted"
	EventPostResubmitted = "post.resubmitted"
)

// AllPostEvents lists every post event type, for forwarder subscription.
var AllPostEvents = []string{
	EventPostSubmitted,
	EventPostApproved,
	EventPostRejected,
	EventPostFeatured,
	EventPostUnfeatured,
	EventPostDeleted,
	EventPostResubmitted,
}

// PostModeratedEvent is published after a post transition commits.
type PostModeratedEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	PostID     int64     `json:"post_id"`
	OwnerID    int64     `json:"owner_id"`
	CategoryID int64     `json:"category_id"`
	AdminID    int64     `json:"admin_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPostModeratedEvent builds the event for an applied transition.
func NewPostModeratedEvent(p *Post, t Transition, adminID int64) *PostModeratedEvent {
	e := &PostModeratedEvent{
		ID:         uuid.NewString(),
		Type:       EventTypeFor(t.Op),
		PostID:     p.ID,
		OwnerID:    p.UserID,
		CategoryID: p.CategoryID,
		AdminID:    adminID,
		From:       t.From.String(),
		To:         t.To.String(),
		OccurredAt: time.Now().UTC(),
	}
	if t.Reason != nil {
		e.Reason = *t.Reason
	}
	return e
}

// EventTypeFor returns the event type published after op is applied.
func EventTypeFor(op PostOp) string {
	switch op.(type) {
	case Approve:
		return EventPostApproved
	case Reject:
		return EventPostRejected
	case Feature:
		return EventPostFeatured
	case Unfeature:
		return EventPostUnfeatured
	case Delete:
		return EventPostDeleted
	case Resubmit:
		return EventPostResubmitted
	}
	return "post." + strings.ToLower(op.Mode())
}

// EventID is the broker deduplication id.
func (e *PostModeratedEvent) EventID() string { return e.ID }

// EventType implements interfaces.Event.
func (e *PostModeratedEvent) EventType() string { return e.Type }

// Timestamp implements interfaces.Event.
func (e *PostModeratedEvent) Timestamp() int64 { return e.OccurredAt.UnixNano() }

// AggregateID implements interfaces.Event.
func (e *PostModeratedEvent) AggregateID() string { return strconv.FormatInt(e.PostID, 10) }

// PostSubmittedEvent is published when a new listing enters the queue.
type PostSubmittedEvent struct {
	ID         string    `json:"id"`
	PostID     int64     `json:"post_id"`
	OwnerID    int64     `json:"owner_id"`
	CategoryID int64     `json:"category_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPostSubmittedEvent builds the event for a new post.
func NewPostSubmittedEvent(p *Post) *PostSubmittedEvent {
	return &PostSubmittedEvent{
		ID:         uuid.NewString(),
		PostID:     p.ID,
		OwnerID:    p.UserID,
		CategoryID: p.CategoryID,
		Title:      p.Title,
		OccurredAt: time.Now().UTC(),
	}
}

// EventID is the broker deduplication id.
func (e *PostSubmittedEvent) EventID() string { return e.ID }

// EventType implements interfaces.Event.
func (e *PostSubmittedEvent) EventType() string { return EventPostSubmitted }

// Timestamp implements interfaces.Event.
func (e *PostSubmittedEvent) Timestamp() int64 { return e.OccurredAt.UnixNano() }

// AggregateID implements interfaces.Event.
func (e *PostSubmittedEvent) AggregateID() string { return strconv.FormatInt(e.PostID, 10) }
