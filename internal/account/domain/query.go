package domain

import (
	"fmt"
	"strings"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// UserSort is an ordering of the user list.
type UserSort string

const (
	SortRecent UserSort = "recent"
	SortName   UserSort = "name"
)

// ParseUserSort maps a request value to a sort. Empty means recent.
func ParseUserSort(s string) (UserSort, error) {
	switch UserSort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRecent:
		return SortRecent, nil
	case SortName:
		return SortName, nil
	}
	return "", errors.BadRequest(fmt.Sprintf("unknown user sort %q", s))
}

// UserFilter narrows the user list.
type UserFilter struct {
	Keyword string
	Status  Status
}

// Validate rejects unknown statuses.
func (f UserFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return errors.BadRequest(fmt.Sprintf("unknown user status %q", f.Status))
	}
	return nil
}
