package domain

import (
	"fmt"
	"strings"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// PostOp is a moderation operation on a single post. The set is closed:
// only the types in this file implement it.
type PostOp interface {
	// Mode is the operation name recorded in the moderation log
	Mode() string
	// Plan computes the transition from the post's current state
	Plan(p *Post) (Transition, error)

	sealed()
}

// Transition is a planned change to a post. Reason is nil when the stored
// rejection reason is kept as is.
type Transition struct {
	Op        PostOp
	From      State
	To        State
	Reason    *string
	Unchanged bool
}

// VisibilityChanged reports whether the transition adds the post to or
// removes it from the public feed, or changes how it is shown there.
func (t Transition) VisibilityChanged() bool {
	if t.Unchanged {
		return false
	}
	return t.From.Visible() != t.To.Visible() || t.From.Featured != t.To.Featured
}

func unchanged(op PostOp, p *Post) Transition {
	return Transition{Op: op, From: p.State(), To: p.State(), Unchanged: true}
}

func refuse(op PostOp, p *Post, want string) error {
	return errors.PreconditionFailed(fmt.Sprintf(
		"cannot %s post %d: it is %s, expected %s",
		strings.ToLower(op.Mode()), p.ID, p.State(), want))
}

func ptr(s string) *string { return &s }

// Approve publishes a pending post.
type Approve struct{}

// Reject refuses a pending post with a reason shown to its owner.
type Reject struct {
	Reason string
}

// Feature pins an approved post to the top of the feed.
type Feature struct{}

// Unfeature removes the featured flag.
type Unfeature struct{}

// Delete soft-deletes a post. The row is kept.
type Delete struct{}

// Resubmit sends a rejected post back to the moderation queue after its
// owner edited it.
type Resubmit struct{}

func (Approve) Mode() string   { return "APPROVE" }
func (Reject) Mode() string    { return "REJECT" }
func (Feature) Mode() string   { return "FEATURE" }
func (Unfeature) Mode() string { return "UNFEATURE" }
func (Delete) Mode() string    { return "DELETE" }
func (Resubmit) Mode() string  { return "RESUBMIT" }

func (Approve) sealed()   {}
func (Reject) sealed()    {}
func (Feature) sealed()   {}
func (Unfeature) sealed() {}
func (Delete) sealed()    {}
func (Resubmit) sealed()  {}

// Plan implements PostOp.
func (op Approve) Plan(p *Post) (Transition, error) {
	switch p.Status {
	case StatusApproved:
		return unchanged(op, p), nil
	case StatusPending:
		return Transition{
			Op:     op,
			From:   p.State(),
			To:     State{Status: StatusApproved},
			Reason: ptr(""),
		}, nil
	}
	return Transition{}, refuse(op, p, "pending")
}

// Plan implements PostOp.
func (op Reject) Plan(p *Post) (Transition, error) {
	if p.Status == StatusRejected {
		return unchanged(op, p), nil
	}
	reason := strings.TrimSpace(op.Reason)
	if reason == "" {
		return Transition{}, errors.BadRequest("a rejection reason is required")
	}
	if p.Status != StatusPending {
		return Transition{}, refuse(op, p, "pending")
	}
	return Transition{
		Op:     op,
		From:   p.State(),
		To:     State{Status: StatusRejected},
		Reason: &reason,
	}, nil
}

// Plan implements PostOp.
func (op Feature) Plan(p *Post) (Transition, error) {
	if p.Status != StatusApproved {
		return Transition{}, refuse(op, p, "approved")
	}
	if p.IsFeatured {
		return unchanged(op, p), nil
	}
	return Transition{Op: op, From: p.State(), To: State{Status: StatusApproved, Featured: true}}, nil
}

// Plan implements PostOp.
func (op Unfeature) Plan(p *Post) (Transition, error) {
	if !p.IsFeatured {
		return unchanged(op, p), nil
	}
	return Transition{Op: op, From: p.State(), To: State{Status: p.Status}}, nil
}

// Plan implements PostOp.
func (op Delete) Plan(p *Post) (Transition, error) {
	if p.Status == StatusDeleted {
		return unchanged(op, p), nil
	}
	return Transition{Op: op, From: p.State(), To: State{Status: StatusDeleted}}, nil
}

// Plan implements PostOp.
func (op Resubmit) Plan(p *Post) (Transition, error) {
	switch p.Status {
	case StatusPending:
		return unchanged(op, p), nil
	case StatusRejected:
		return Transition{
			Op:     op,
			From:   p.State(),
			To:     State{Status: StatusPending},
			Reason: ptr(""),
		}, nil
	}
	return Transition{}, refuse(op, p, "rejected")
}

// ParseOp builds the operation named by action. reason is only used by
// reject.
func ParseOp(action, reason string) (PostOp, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve":
		return Approve{}, nil
	case "reject":
		return Reject{Reason: reason}, nil
	case "feature":
		return Feature{}, nil
	case "unfeature":
		return Unfeature{}, nil
	case "delete":
		return Delete{}, nil
	case "resubmit":
		return Resubmit{}, nil
	}
	return nil, errors.BadRequest(fmt.Sprintf("unknown post action %q", action))
}
