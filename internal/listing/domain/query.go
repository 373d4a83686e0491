package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

// PostSort is a feed ordering.
type PostSort string

const (
	SortRecent    PostSort = "recent"
	SortOldest    PostSort = "oldest"
	SortPriceLow  PostSort = "price_low"
	SortPriceHigh PostSort = "price_high"
	SortPopular   PostSort = "popular"
	SortMostLiked PostSort = "most_liked"
)

// ParsePostSort maps a request value to a sort. Empty means recent.
func ParsePostSort(s string) (PostSort, error) {
	switch PostSort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRecent:
		return SortRecent, nil
	case SortOldest:
		return SortOldest, nil
	case SortPriceLow:
		return SortPriceLow, nil
	case SortPriceHigh:
		return SortPriceHigh, nil
	case SortPopular:
		return SortPopular, nil
	case SortMostLiked:
		return SortMostLiked, nil
	}
	return "", errors.BadRequest(fmt.Sprintf("unknown post sort %q", s))
}

// PostFilter narrows a post query. Zero values mean no restriction.
type PostFilter struct {
	Status        Status
	CategoryID    int64
	SubCategoryID int64
	StateID       int64
	DistrictID    int64
	UserID        int64
	Keyword       string
	FeaturedOnly  bool
	UrgentOnly    bool
	MinPrice      *float64
	MaxPrice      *float64
}

// Validate rejects filters that can never match.
func (f PostFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return errors.BadRequest(fmt.Sprintf("unknown post status %q", f.Status))
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return errors.BadRequest("minimum price is above maximum price")
	}
	return nil
}

// PublicFeed reports whether the filter selects a category page of the
// public feed, the only post query whose pages are cached.
func (f PostFilter) PublicFeed() bool {
	return f.Status == StatusApproved && f.CategoryID > 0 && f.UserID == 0
}

// Fingerprint renders the filter and sort as a stable string, used in cache
// keys and page tokens.
func (f PostFilter) Fingerprint(sort PostSort) string {
	parts := []string{
		"s=" + string(f.Status),
		"c=" + strconv.FormatInt(f.CategoryID, 10),
		"sc=" + strconv.FormatInt(f.SubCategoryID, 10),
		"st=" + strconv.FormatInt(f.StateID, 10),
		"d=" + strconv.FormatInt(f.DistrictID, 10),
		"u=" + strconv.FormatInt(f.UserID, 10),
		"k=" + strings.ToLower(strings.TrimSpace(f.Keyword)),
		"f=" + strconv.FormatBool(f.FeaturedOnly),
		"ur=" + strconv.FormatBool(f.UrgentOnly),
		"min=" + formatPrice(f.MinPrice),
		"max=" + formatPrice(f.MaxPrice),
		"o=" + string(sort),
	}
	return strings.Join(parts, "|")
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
