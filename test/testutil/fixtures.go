package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	accountdomain "github.com/narwhalmedia/classifieds/internal/account/domain"
	accountrepo "github.com/narwhalmedia/classifieds/internal/account/repository"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	listingrepo "github.com/narwhalmedia/classifieds/internal/listing/repository"
	referencerepo "github.com/narwhalmedia/classifieds/internal/reference/repository"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	reportrepo "github.com/narwhalmedia/classifieds/internal/report/repository"
)

// BaseTime is the creation time of the first seeded post. Later posts are
// one minute apart so the recent sort is deterministic.
var BaseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// CreateTestPost returns an unsaved post with default values.
func CreateTestPost(userID, categoryID int64, status listingdomain.Status) *listingdomain.Post {
	price := 1500.0
	p := &listingdomain.Post{
		UserID:       userID,
		CategoryID:   categoryID,
		Title:        "Tractor for sale",
		Description:  "Well kept, single owner",
		Price:        &price,
		PriceType:    listingdomain.PriceNegotiable,
		ContactName:  "Test Seller",
		ContactPhone: "9800000000",
		Status:       status,
		CreatedAt:    BaseTime,
		UpdatedAt:    BaseTime,
	}
	if status == listingdomain.StatusRejected {
		p.RejectionReason = "blurry photos"
	}
	return p
}

// SeedPosts stores n posts with the given status and returns them in
// creation order.
func SeedPosts(t *testing.T, db *gorm.DB, n int, userID, categoryID int64, status listingdomain.Status) []*listingdomain.Post {
	t.Helper()

	repo := listingrepo.NewGormRepository(db)
	var offset int64
	require.NoError(t, db.Model(&listingrepo.Post{}).Count(&offset).Error)

	posts := make([]*listingdomain.Post, n)
	for i := 0; i < n; i++ {
		p := CreateTestPost(userID, categoryID, status)
		p.Title = fmt.Sprintf("Post %d", int(offset)+i+1)
		p.CreatedAt = BaseTime.Add(time.Duration(int(offset)+i) * time.Minute)
		p.UpdatedAt = p.CreatedAt
		require.NoError(t, repo.CreatePost(t.Context(), p))
		posts[i] = p
	}
	return posts
}

// CreateTestUser returns an unsaved active account.
func CreateTestUser(username string) *accountdomain.User {
	return &accountdomain.User{
		UserName:  username,
		FirstName: "Test",
		LastName:  username,
		Email:     username + "@example.com",
		Mobile:    "9800000000",
		Status:    accountdomain.StatusActive,
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
	}
}

// SeedUser stores one account with the given status.
func SeedUser(t *testing.T, db *gorm.DB, username string, status accountdomain.Status) *accountdomain.User {
	t.Helper()

	u := CreateTestUser(username)
	u.Status = status
	require.NoError(t, accountrepo.NewGormRepository(db).CreateUser(t.Context(), u))
	return u
}

// SeedCategory stores one active category.
func SeedCategory(t *testing.T, db *gorm.DB, name string, sortOrder int) int64 {
	t.Helper()

	row := &referencerepo.Category{Name: name, SortOrder: sortOrder, IsActive: true}
	require.NoError(t, db.Create(row).Error)
	return row.ID
}

// SeedGeography stores one state with the given number of districts.
func SeedGeography(t *testing.T, db *gorm.DB, state string, districts int) (int64, []int64) {
	t.Helper()

	s := &referencerepo.State{Name: state, Code: state[:2], IsActive: true}
	require.NoError(t, db.Create(s).Error)

	ids := make([]int64, districts)
	for i := 0; i < districts; i++ {
		d := &referencerepo.District{StateID: s.ID, Name: fmt.Sprintf("District %03d", i+1), IsActive: true}
		require.NoError(t, db.Create(d).Error)
		ids[i] = d.ID
	}
	return s.ID, ids
}

// SeedReport stores one report against postID with the given status.
func SeedReport(t *testing.T, db *gorm.DB, postID, reportedBy int64, status reportdomain.Status) *reportdomain.Report {
	t.Helper()

	r := &reportdomain.Report{
		PostID:     postID,
		ReportedBy: reportedBy,
		Reason:     "misleading price",
		Status:     status,
		CreatedAt:  BaseTime,
		UpdatedAt:  BaseTime,
	}
	require.NoError(t, reportrepo.NewGormRepository(db).CreateReport(t.Context(), r))
	return r
}
