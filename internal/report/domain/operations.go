package domain

import (
	"fmt"
	"strings"

	"github.com/narwhalmedia/classifieds/internal/report/constants"
	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// ReportOp is a staff action on a report. Only the types in this file
// implement it.
type ReportOp interface {
	Mode() string
	Plan(r *Report) (Transition, error)

	sealed()
}

// Transition is a planned status change.
type Transition struct {
	Op        ReportOp
	From      Status
	To        Status
	Notes     string
	Unchanged bool
}

// Review marks a pending report as looked at. Notes are optional.
type Review struct {
	Notes string
}

// Resolve closes a report. Resolving requires notes.
type Resolve struct {
	Notes string
}

func (Review) Mode() string  { return "REVIEW" }
func (Resolve) Mode() string { return "RESOLVE" }

func (Review) sealed()  {}
func (Resolve) sealed() {}

// Plan implements ReportOp. A resolved report cannot go back to reviewed.
func (op Review) Plan(r *Report) (Transition, error) {
	switch r.Status {
	case StatusReviewed:
		return Transition{Op: op, From: r.Status, To: r.Status, Unchanged: true}, nil
	case StatusPending:
		notes := strings.TrimSpace(op.Notes)
		if err := checkNotes(notes); err != nil {
			return Transition{}, err
		}
		return Transition{Op: op, From: r.Status, To: StatusReviewed, Notes: notes}, nil
	}
	return Transition{}, errors.PreconditionFailed(fmt.Sprintf(
		"cannot review report %d: it is %s", r.ID, r.Status))
}

// Plan implements ReportOp.
func (op Resolve) Plan(r *Report) (Transition, error) {
	if r.Status == StatusResolved {
		return Transition{Op: op, From: r.Status, To: r.Status, Unchanged: true}, nil
	}
	notes := strings.TrimSpace(op.Notes)
	if notes == "" {
		return Transition{}, errors.BadRequest("resolving a report requires notes")
	}
	if err := checkNotes(notes); err != nil {
		return Transition{}, err
	}
	return Transition{Op: op, From: r.Status, To: StatusResolved, Notes: notes}, nil
}

func checkNotes(notes string) error {
	if len(notes) > constants.MaxNotesLength {
		return errors.BadRequest(fmt.Sprintf("review notes must not exceed %d characters", constants.MaxNotesLength))
	}
	return nil
}

// ParseOp builds the operation named by action.
func ParseOp(action, notes string) (ReportOp, error) {
	if err := checkNotes(strings.TrimSpace(notes)); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "review":
		return Review{Notes: notes}, nil
	case "resolve":
		if strings.TrimSpace(notes) == "" {
			return nil, errors.BadRequest("resolving a report requires notes")
		}
		return Resolve{Notes: notes}, nil
	}
	return nil, errors.BadRequest(fmt.Sprintf("unknown report action %q", action))
}
