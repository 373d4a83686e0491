package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Event type names published on the event bus.
const (
	EventReportFiled    = "report.filed"
	EventReportReviewed = "report.reviewed"
	EventReportResolved = "report.resolved"
)

// AllReportEvents lists every report event type.
var AllReportEvents = []string{
	EventReportFiled,
	EventReportReviewed,
	EventReportResolved,
}

// EventTypeFor returns the event type published after op is applied.
func EventTypeFor(op ReportOp) string {
	if _, ok := op.(Resolve); ok {
		return EventReportResolved
	}
	return EventReportReviewed
}

// ReportEvent is published after a report is filed or its status changes.
type ReportEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ReportID   int64     `json:"report_id"`
	PostID     int64     `json:"post_id"`
	ActorID    int64     `json:"actor_id"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewReportFiledEvent builds the event for a newly filed report.
func NewReportFiledEvent(r *Report) *ReportEvent {
	return &ReportEvent{
		ID:         uuid.NewString(),
		Type:       EventReportFiled,
		ReportID:   r.ID,
		PostID:     r.PostID,
		ActorID:    r.ReportedBy,
		To:         string(r.Status),
		OccurredAt: time.Now().UTC(),
	}
}

// NewReportModeratedEvent builds the event for an applied transition.
func NewReportModeratedEvent(r *Report, t Transition, adminID int64) *ReportEvent {
	return &ReportEvent{
		ID:         uuid.NewString(),
		Type:       EventTypeFor(t.Op),
		ReportID:   r.ID,
		PostID:     r.PostID,
		ActorID:    adminID,
		From:       string(t.From),
		To:         string(t.To),
		OccurredAt: time.Now().UTC(),
	}
}

// EventID is the broker deduplication id.
func (e *ReportEvent) EventID() string { return e.ID }

// EventType implements interfaces.Event.
func (e *ReportEvent) EventType() string { return e.Type }

// Timestamp implements interfaces.Event.
func (e *ReportEvent) Timestamp() int64 { return e.OccurredAt.UnixNano() }

// AggregateID implements interfaces.Event.
func (e *ReportEvent) AggregateID() string { return strconv.FormatInt(e.ReportID, 10) }
