package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// State is the top level of the geographic hierarchy.
type State struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

// District belongs to a state.
type District struct {
	ID       int64  `json:"id"`
	StateID  int64  `json:"state_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

// Taluka belongs to a district.
type Taluka struct {
	ID         int64  `json:"id"`
	DistrictID int64  `json:"district_id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	IsActive   bool   `json:"is_active"`
}

// Village belongs to a taluka.
type Village struct {
	ID       int64  `json:"id"`
	TalukaID int64  `json:"taluka_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Pincode  string `json:"pincode"`
	IsActive bool   `json:"is_active"`
}

// Category is a top-level listing category. PostCount is computed by the
// store and may lag behind moderation.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	NameLocal string `json:"name_local"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
	PostCount int64  `json:"post_count"`
}

// Validate checks the editable fields.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.BadRequest("category name is required")
	}
	if c.SortOrder < 0 {
		return errors.BadRequest("category sort order must not be negative")
	}
	return nil
}

// SubCategory belongs to a category.
type SubCategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	NameLocal  string `json:"name_local"`
	Icon       string `json:"icon"`
	SortOrder  int    `json:"sort_order"`
	IsActive   bool   `json:"is_active"`
	PostCount  int64  `json:"post_count"`
}

// Validate checks the editable fields.
func (s *SubCategory) Validate() error {
	if s.CategoryID <= 0 {
		return errors.BadRequest("subcategory parent category is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.BadRequest("subcategory name is required")
	}
	if s.SortOrder < 0 {
		return errors.BadRequest("subcategory sort order must not be negative")
	}
	return nil
}

// CategorySort is an ordering of the category list.
type CategorySort string

const (
	SortByOrder     CategorySort = "sort_order"
	SortByName      CategorySort = "name"
	SortByPostCount CategorySort = "post_count"
)

// ParseCategorySort maps a request value to a sort. Empty means sort_order.
func ParseCategorySort(s string) (CategorySort, error) {
	switch CategorySort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByOrder:
		return SortByOrder, nil
	case SortByName:
		return SortByName, nil
	case SortByPostCount:
		return SortByPostCount, nil
	}
	return "", errors.BadRequest(fmt.Sprintf("unknown category sort %q", s))
}

// CategoryFilter narrows the category list.
type CategoryFilter struct {
	ActiveOnly bool
	Keyword    string
}

// EventCategoryChanged is published after any category or subcategory edit.
const EventCategoryChanged = "category.changed"

// CategoryChangedEvent tells subscribers that the category tree changed.
type CategoryChangedEvent struct {
	ID            string    `json:"id"`
	CategoryID    int64     `json:"category_id"`
	SubCategoryID int64     `json:"sub_category_id,omitempty"`
	Change        string    `json:"change"`
	AdminID       int64     `json:"admin_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewCategoryChangedEvent builds the event. change is created, updated or
// deleted.
func NewCategoryChangedEvent(categoryID, subCategoryID int64, change string, adminID int64) *CategoryChangedEvent {
	return &CategoryChangedEvent{
		ID:            uuid.NewString(),
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		Change:        change,
		AdminID:       adminID,
		OccurredAt:    time.Now().UTC(),
	}
}

// EventID is the broker deduplication id.
func (e *CategoryChangedEvent) EventID() string { return e.ID }

// EventType implements interfaces.Event.
func (e *CategoryChangedEvent) EventType() string { return EventCategoryChanged }

// Timestamp implements interfaces.Event.
func (e *CategoryChangedEvent) Timestamp() int64 { return e.OccurredAt.UnixNano() }

// AggregateID implements interfaces.Event.
func (e *CategoryChangedEvent) AggregateID() string { return strconv.FormatInt(e.CategoryID, 10) }

// CategoryStats are the category counters shown on the admin dashboard.
type CategoryStats struct {
	Total  int64               `json:"total"`
	Active int64               `json:"active"`
	Top    []CategoryPostCount `json:"top"`
}

// CategoryPostCount is one bar of the posts-per-category chart.
type CategoryPostCount struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	PostCount  int64  `json:"post_count"`
}
