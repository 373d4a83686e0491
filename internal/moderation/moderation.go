// Package moderation holds the result types shared by the post lifecycle
// engine, the user status engine, the report queue and the bulk coordinator.
package moderation

import "context"

// EntityType names a moderated aggregate.
type EntityType string

const (
	EntityPost EntityType = "post"
	EntityUser EntityType = "user"
	// EntityReport is a user complaint about a post.
	EntityReport EntityType = "report"
)

// Outcome tells whether a transition changed anything.
type Outcome string

const (
	// OutcomeApplied means the entity moved to a new state.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged means the entity was already in the target state.
	OutcomeUnchanged Outcome = "unchanged"
)

// Result describes one successful transition request.
type Result struct {
	EntityType EntityType `json:"entity_type"`
	ID         int64      `json:"id"`
	Action     string     `json:"action"`
	Outcome    Outcome    `json:"outcome"`
	From       string     `json:"from"`
	To         string     `json:"to"`
}

// Changed reports whether the transition was applied.
func (r *Result) Changed() bool {
	return r != nil && r.Outcome == OutcomeApplied
}

// Transitioner applies one already-chosen action to a single entity. Every
// engine is adapted to it for bulk processing.
type Transitioner interface {
	Transition(ctx context.Context, id int64, actorID int64) (*Result, error)
}

// TransitionerFunc adapts a function to Transitioner.
type TransitionerFunc func(ctx context.Context, id int64, actorID int64) (*Result, error)

// Transition implements Transitioner.
func (f TransitionerFunc) Transition(ctx context.Context, id int64, actorID int64) (*Result, error) {
	return f(ctx, id, actorID)
}
