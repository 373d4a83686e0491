package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Event type names published on the event bus.
const (
	EventUserActivated   = "user.activated"
	EventUserDeactivated = "user.deactivated"
	EventUserBanned      = "user.banned"
	EventUserUnbanned    = "user.unbanned"
)

// AllUserEvents lists every account event type.
var AllUserEvents = []string{
	EventUserActivated,
	EventUserDeactivated,
	EventUserBanned,
	EventUserUnbanned,
}

// EventTypeFor returns the event type published after op is applied.
func EventTypeFor(op UserOp) string {
	switch op.(type) {
	case Activate:
		return EventUserActivated
	case Deactivate:
		return EventUserDeactivated
	case Ban:
		return EventUserBanned
	default:
		return EventUserUnbanned
	}
}

// UserModeratedEvent is published after an account status change commits.
type UserModeratedEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	AdminID    int64     `json:"admin_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserModeratedEvent builds the event for an applied transition.
func NewUserModeratedEvent(userID int64, t Transition, adminID int64) *UserModeratedEvent {
	return &UserModeratedEvent{
		ID:         uuid.NewString(),
		Type:       EventTypeFor(t.Op),
		UserID:     userID,
		AdminID:    adminID,
		From:       string(t.From),
		To:         string(t.To),
		OccurredAt: time.Now().UTC(),
	}
}

// EventID is the broker deduplication id.
func (e *UserModeratedEvent) EventID() string { return e.ID }

// EventType implements interfaces.Event.
func (e *UserModeratedEvent) EventType() string { return e.Type }

// Timestamp implements interfaces.Event.
func (e *UserModeratedEvent) Timestamp() int64 { return e.OccurredAt.UnixNano() }

// AggregateID implements interfaces.Event.
func (e *UserModeratedEvent) AggregateID() string { return strconv.FormatInt(e.UserID, 10) }
