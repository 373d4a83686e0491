package cache

import (
	"strconv"
	"strings"
	"time"
)

// Separator joins key segments. Every prefix of a key that ends on a
// segment boundary is a namespace of that key.
const Separator = ":"

// Namespace roots used by the portal.
const (
	NamespaceStates        = "states"
	NamespaceDistricts     = "districts"
	NamespaceTalukas       = "talukas"
	NamespaceVillages      = "villages"
	NamespaceCategories    = "categories"
	NamespaceSubCategories = "subcategories"
	NamespaceDashboard     = "dashboard"
	NamespaceUser          = "user"
	NamespaceFeed          = "feed"
	NamespaceFeatured      = "featured"
)

// Join builds a key from its segments.
func Join(parts ...string) string {
	return strings.Join(parts, Separator)
}

// Namespaces returns every namespace the key belongs to, shortest first.
// "districts:12" belongs to "districts" and "districts:12".
func Namespaces(key string) []string {
	parts := strings.Split(key, Separator)
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], Separator)
	}
	return out
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// States is the key of the state list.
func States() string { return NamespaceStates }

// Districts is the key of the districts of one state.
func Districts(stateID int64) string { return Join(NamespaceDistricts, id(stateID)) }

// Talukas is the key of the talukas of one district.
func Talukas(districtID int64) string { return Join(NamespaceTalukas, id(districtID)) }

// Villages is the key of the villages of one taluka.
func Villages(talukaID int64) string { return Join(NamespaceVillages, id(talukaID)) }

// Categories is the key of the category tree.
func Categories() string { return NamespaceCategories }

// SubCategories is the key of the subcategories of one category. A zero
// categoryID selects every subcategory.
func SubCategories(categoryID int64) string {
	if categoryID == 0 {
		return Join(NamespaceSubCategories, "all")
	}
	return Join(NamespaceSubCategories, id(categoryID))
}

// Dashboard is the key of the admin dashboard snapshot.
func Dashboard() string { return NamespaceDashboard }

// User is the key of one user's profile snapshot.
func User(userID int64) string { return Join(NamespaceUser, id(userID)) }

// FeedNamespace groups every cached public feed page of a category.
func FeedNamespace(categoryID int64) string { return Join(NamespaceFeed, id(categoryID)) }

// Feed is the key of one public feed page; fingerprint identifies the
// filter, sort and window.
func Feed(categoryID int64, fingerprint string) string {
	return Join(FeedNamespace(categoryID), fingerprint)
}

// FeaturedPosts is the key of the featured strip shown above every feed.
func FeaturedPosts() string { return NamespaceFeatured }

// TTLPolicy maps namespace roots to entry lifetimes.
type TTLPolicy struct {
	Reference   time.Duration
	UserProfile time.Duration
	Dashboard   time.Duration
	FeedPage    time.Duration
}

// DefaultTTLPolicy returns the lifetimes used when nothing is configured.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Reference:   60 * time.Minute,
		UserProfile: 30 * time.Minute,
		Dashboard:   5 * time.Minute,
		FeedPage:    5 * time.Minute,
	}
}

// For returns the lifetime for key based on its root namespace.
func (p TTLPolicy) For(key string) time.Duration {
	root, _, _ := strings.Cut(key, Separator)
	switch root {
	case NamespaceUser:
		return p.UserProfile
	case NamespaceDashboard:
		return p.Dashboard
	case NamespaceFeed, NamespaceFeatured:
		return p.FeedPage
	default:
		return p.Reference
	}
}
