package domain

import (
	"fmt"
	"strings"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// UserOp is a moderation operation on an account. Only the types in this
// file implement it.
type UserOp interface {
	Mode() string
	Plan(u *User) (Transition, error)

	sealed()
}

// Transition is a planned status change.
type Transition struct {
	Op        UserOp
	From      Status
	To        Status
	Unchanged bool
}

// Activate re-enables an inactive account.
type Activate struct{}

// Deactivate disables an account without banning it.
type Deactivate struct{}

// Ban blocks an account.
type Ban struct{}

// Unban lifts a ban.
type Unban struct{}

func (Activate) Mode() string   { return "ACTIVATE" }
func (Deactivate) Mode() string { return "DEACTIVATE" }
func (Ban) Mode() string        { return "BAN" }
func (Unban) Mode() string      { return "UNBAN" }

func (Activate) sealed()   {}
func (Deactivate) sealed() {}
func (Ban) sealed()        {}
func (Unban) sealed()      {}

// plan is shared by all ops: target is the end state, allowed the states
// the op may start from.
func plan(op UserOp, u *User, target Status, allowed ...Status) (Transition, error) {
	if u.Status == target {
		return Transition{Op: op, From: u.Status, To: u.Status, Unchanged: true}, nil
	}
	for _, s := range allowed {
		if u.Status == s {
			return Transition{Op: op, From: u.Status, To: target}, nil
		}
	}
	return Transition{}, errors.PreconditionFailed(fmt.Sprintf(
		"cannot %s user %d: account is %s", strings.ToLower(op.Mode()), u.ID, u.Status))
}

// Plan implements UserOp.
func (op Activate) Plan(u *User) (Transition, error) {
	return plan(op, u, StatusActive, StatusInactive)
}

// Plan implements UserOp.
func (op Deactivate) Plan(u *User) (Transition, error) {
	return plan(op, u, StatusInactive, StatusActive)
}

// Plan implements UserOp.
func (op Ban) Plan(u *User) (Transition, error) {
	return plan(op, u, StatusBanned, StatusActive, StatusInactive)
}

// Plan implements UserOp.
func (op Unban) Plan(u *User) (Transition, error) {
	if u.Status == StatusActive {
		return Transition{Op: op, From: u.Status, To: u.Status, Unchanged: true}, nil
	}
	return plan(op, u, StatusActive, StatusBanned)
}

// ParseOp builds the operation named by action.
func ParseOp(action string) (UserOp, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "activate":
		return Activate{}, nil
	case "deactivate":
		return Deactivate{}, nil
	case "ban":
		return Ban{}, nil
	case "unban":
		return Unban{}, nil
	}
	return nil, errors.BadRequest(fmt.Sprintf("unknown user action %q", action))
}
