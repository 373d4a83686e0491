package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	accountdomain "github.com/narwhalmedia/classifieds/internal/account/domain"
	accountrepo "github.com/narwhalmedia/classifieds/internal/account/repository"
	accountservice "github.com/narwhalmedia/classifieds/internal/account/service"
	"github.com/narwhalmedia/classifieds/internal/admin/service"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	listingrepo "github.com/narwhalmedia/classifieds/internal/listing/repository"
	listingservice "github.com/narwhalmedia/classifieds/internal/listing/service"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	referencedomain "github.com/narwhalmedia/classifieds/internal/reference/domain"
	referencerepo "github.com/narwhalmedia/classifieds/internal/reference/repository"
	referenceservice "github.com/narwhalmedia/classifieds/internal/reference/service"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	reportrepo "github.com/narwhalmedia/classifieds/internal/report/repository"
	reportservice "github.com/narwhalmedia/classifieds/internal/report/service"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/database"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/logger"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
	"github.com/narwhalmedia/classifieds/pkg/repository"
	"github.com/narwhalmedia/classifieds/test/testutil"
)

const defaultReason = "Listing does not follow the posting rules"

type ModerationServiceTestSuite struct {
	suite.Suite

	ctx      context.Context
	db       *gorm.DB
	cache    *cache.ReferenceCache
	eventBus *events.InMemoryEventBus
	posts    *listingservice.PostService
	reports  *reportservice.ReportService
	service  *service.ModerationService
}

func (suite *ModerationServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	suite.cache = cache.New(cache.WithCleanupInterval(0))
	suite.eventBus = events.NewInMemoryEventBus(logger.NewNoop())

	log := logger.NewNoop()
	ttl := cache.DefaultTTLPolicy()
	paging := pagination.Policy{DefaultSize: 20, MaxSize: 100}

	suite.posts = listingservice.NewPostService(listingrepo.NewGormRepository(suite.db), suite.eventBus, suite.cache, ttl, paging, log)
	users := accountservice.NewUserService(accountrepo.NewGormRepository(suite.db), suite.eventBus, suite.cache, ttl, paging, log)
	reference := referenceservice.NewReferenceService(referencerepo.NewGormRepository(suite.db), suite.eventBus, suite.cache, ttl, paging, log)
	suite.reports = reportservice.NewReportService(reportrepo.NewGormRepository(suite.db), suite.posts, suite.eventBus, suite.cache, paging, log)

	suite.service = service.NewModerationService(
		suite.posts,
		users,
		reference,
		suite.reports,
		repository.NewAuditLog(suite.db),
		service.NewBulkCoordinator(4, 50, log),
		suite.cache,
		ttl,
		service.Settings{
			Service:             "portal",
			Version:             "test",
			DefaultRejectReason: defaultReason,
			Ping: func(ctx context.Context) error {
				return database.Ping(ctx, suite.db)
			},
		},
		log,
	)
}

func (suite *ModerationServiceTestSuite) TearDownTest() {
	_ = suite.eventBus.Stop()
	_ = suite.cache.Close()
}

// seedWithIDs stores pending posts with fixed ids.
func (suite *ModerationServiceTestSuite) seedWithIDs(ids ...int64) {
	repo := listingrepo.NewGormRepository(suite.db)
	for _, id := range ids {
		p := testutil.CreateTestPost(7, 1, listingdomain.StatusPending)
		p.ID = id
		suite.Require().NoError(repo.CreatePost(suite.ctx, p))
	}
}

func (suite *ModerationServiceTestSuite) TestBulkRejectWithMissingPost() {
	// Arrange
	suite.seedWithIDs(101, 103)

	// Act
	outcome, err := suite.service.BulkModerate(suite.ctx, moderation.EntityPost, []int64{101, 102, 103}, "reject", 7, "")

	// Assert
	suite.Require().NoError(err)
	suite.Equal(3, outcome.RequestedCount)
	suite.Equal(2, outcome.SucceededCount)
	suite.Equal([]int64{102}, outcome.FailedIDs)

	for _, id := range []int64{101, 103} {
		p, err := suite.posts.GetPost(suite.ctx, id)
		suite.Require().NoError(err)
		suite.Equal(listingdomain.StatusRejected, p.Status)
		suite.Equal(defaultReason, p.RejectionReason)
	}
}

func (suite *ModerationServiceTestSuite) TestBulkApproveIsIdempotent() {
	// Arrange
	suite.seedWithIDs(101, 102, 103)
	first, err := suite.service.BulkModerate(suite.ctx, moderation.EntityPost, []int64{101, 102, 103}, "approve", 7, "")
	suite.Require().NoError(err)
	suite.Equal(3, first.SucceededCount)

	// Act
	again, err := suite.service.BulkModerate(suite.ctx, moderation.EntityPost, []int64{101, 102, 103}, "approve", 7, "")

	// Assert
	suite.Require().NoError(err)
	suite.Zero(again.SucceededCount)
	suite.Empty(again.FailedIDs)
	suite.Equal(3, again.SkippedCount)

	history, err := suite.service.History(suite.ctx, moderation.EntityPost, 101)
	suite.Require().NoError(err)
	suite.Len(history, 1)
}

func (suite *ModerationServiceTestSuite) TestBulkModerateUsers() {
	a := testutil.SeedUser(suite.T(), suite.db, "anil", accountdomain.StatusActive)
	b := testutil.SeedUser(suite.T(), suite.db, "bina", accountdomain.StatusInactive)
	c := testutil.SeedUser(suite.T(), suite.db, "chetan", accountdomain.StatusBanned)

	outcome, err := suite.service.BulkModerate(suite.ctx, moderation.EntityUser, []int64{a.ID, b.ID, c.ID}, "ban", 1, "")

	suite.Require().NoError(err)
	suite.Equal(2, outcome.SucceededCount)
	suite.Equal(1, outcome.SkippedCount)
	suite.Empty(outcome.FailedIDs)
}

func (suite *ModerationServiceTestSuite) TestBulkModerateRejectsBadRequests() {
	_, err := suite.service.BulkModerate(suite.ctx, moderation.EntityPost, nil, "approve", 7, "")
	suite.True(errors.IsBadRequest(err))

	_, err = suite.service.BulkModerate(suite.ctx, moderation.EntityPost, []int64{1}, "publish", 7, "")
	suite.True(errors.IsBadRequest(err))

	_, err = suite.service.BulkModerate(suite.ctx, "category", []int64{1}, "approve", 7, "")
	suite.True(errors.IsBadRequest(err))

	ids := make([]int64, 51)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	_, err = suite.service.BulkModerate(suite.ctx, moderation.EntityPost, ids, "approve", 7, "")
	suite.True(errors.IsBadRequest(err))
}

func (suite *ModerationServiceTestSuite) TestModerateSingle() {
	suite.seedWithIDs(5)

	_, err := suite.service.Moderate(suite.ctx, moderation.EntityPost, 5, "reject", 7, "")
	suite.True(errors.IsBadRequest(err))

	res, err := suite.service.Moderate(suite.ctx, moderation.EntityPost, 5, "approve", 7, "")
	suite.Require().NoError(err)
	suite.True(res.Changed())

	_, err = suite.service.Moderate(suite.ctx, moderation.EntityPost, 5, "resubmit", 7, "")
	suite.True(errors.IsPreconditionFailed(err))
	suite.Equal("cannot resubmit post 5: it is approved, expected rejected", errors.UserMessage(err))
}

func (suite *ModerationServiceTestSuite) TestFortyFivePostPages() {
	// Arrange
	catID := testutil.SeedCategory(suite.T(), suite.db, "Seeds", 1)
	testutil.SeedPosts(suite.T(), suite.db, 45, 7, catID, listingdomain.StatusApproved)
	filter := listingdomain.PostFilter{Status: listingdomain.StatusApproved, CategoryID: catID}

	// Act
	first, err := suite.service.QueryPosts(suite.ctx, filter, listingdomain.SortRecent, 1, 20)
	suite.Require().NoError(err)

	// Assert
	suite.Equal(int64(45), first.TotalRecords)
	suite.Equal(3, first.TotalPages)
	suite.True(first.HasNext)
	suite.False(first.HasPrevious)
	suite.Len(first.Items, 20)

	var seen int
	ids := map[int64]bool{}
	for page := 1; page <= first.TotalPages+1; page++ {
		p, err := suite.service.QueryPosts(suite.ctx, filter, listingdomain.SortRecent, page, 20)
		suite.Require().NoError(err)
		for _, item := range p.Items {
			ids[item.ID] = true
		}
		seen += len(p.Items)
		if page > first.TotalPages {
			suite.Empty(p.Items)
			suite.False(p.HasNext)
		}
	}
	suite.Equal(45, seen)
	suite.Len(ids, 45)
}

func (suite *ModerationServiceTestSuite) TestDashboardCachedUntilModeration() {
	// Arrange
	suite.seedWithIDs(1, 2)
	testutil.SeedCategory(suite.T(), suite.db, "Pumps", 1)

	before, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(2), before.Posts.Pending)
	suite.Equal(int64(1), before.Categories.Total)

	// Act
	_, err = suite.service.Moderate(suite.ctx, moderation.EntityPost, 1, "approve", 7, "")
	suite.Require().NoError(err)
	after, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)

	// Assert
	suite.Equal(int64(1), after.Posts.Pending)
	suite.Equal(int64(1), after.Posts.Approved)
	suite.True(after.GeneratedAt.After(before.GeneratedAt) || after.GeneratedAt.Equal(before.GeneratedAt))
}

func (suite *ModerationServiceTestSuite) TestFeatureRefreshesDashboardStrip() {
	suite.seedWithIDs(1)
	_, err := suite.service.Moderate(suite.ctx, moderation.EntityPost, 1, "approve", 7, "")
	suite.Require().NoError(err)

	d, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(d.Featured)

	_, err = suite.service.Moderate(suite.ctx, moderation.EntityPost, 1, "feature", 7, "")
	suite.Require().NoError(err)

	d, err = suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(d.Featured, 1)
	suite.Equal(int64(1), d.Posts.Featured)
}

func (suite *ModerationServiceTestSuite) TestQueryCategoriesAndUsers() {
	testutil.SeedCategory(suite.T(), suite.db, "B", 2)
	testutil.SeedCategory(suite.T(), suite.db, "A", 1)
	testutil.SeedUser(suite.T(), suite.db, "u1", accountdomain.StatusActive)

	cats, err := suite.service.QueryCategories(suite.ctx, referencedomain.CategoryFilter{}, referencedomain.SortByOrder, 1, 1)
	suite.Require().NoError(err)
	suite.Equal("A", cats.Items[0].Name)
	suite.Equal(2, cats.TotalPages)

	users, err := suite.service.QueryUsers(suite.ctx, accountdomain.UserFilter{}, accountdomain.SortRecent, 1, 10)
	suite.Require().NoError(err)
	suite.Equal(int64(1), users.TotalRecords)
}

func (suite *ModerationServiceTestSuite) TestInvalidateCache() {
	_, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(2, suite.cache.Stats().Entries)

	suite.Equal(1, suite.service.InvalidateCache("featured"))
	suite.Equal(0, suite.service.InvalidateCache("districts"))
	suite.Equal(1, suite.service.InvalidateCache(""))
	suite.Zero(suite.cache.Stats().Entries)
	suite.Equal(0, suite.service.InvalidateCache(""), "a second flush finds nothing to drop")
}

func (suite *ModerationServiceTestSuite) TestSystemInfo() {
	info := suite.service.SystemInfo(suite.ctx)

	suite.Equal("portal", info.Service)
	suite.Equal("connected", info.Database)
	suite.Positive(info.NumCPU)
	suite.NotEmpty(info.GoVersion)
}

func (suite *ModerationServiceTestSuite) TestReportQueueFeedsDashboard() {
	// Arrange
	post := testutil.SeedPosts(suite.T(), suite.db, 1, 7, 1, listingdomain.StatusApproved)[0]
	r := &reportdomain.Report{PostID: post.ID, ReportedBy: 11, Reason: "duplicate listing"}
	suite.Require().NoError(suite.reports.File(suite.ctx, r))

	before, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), before.Reports.Pending)

	queue, err := suite.service.PendingReports(suite.ctx, 1, 10)
	suite.Require().NoError(err)
	suite.Require().Len(queue.Items, 1)
	suite.Equal(r.ID, queue.Items[0].ID)
	suite.Equal(post.Title, queue.Items[0].PostTitle)
	suite.Equal(listingdomain.StatusApproved, queue.Items[0].PostStatus)

	// Act
	res, err := suite.service.Moderate(suite.ctx, moderation.EntityReport, r.ID, "review", 2, "")

	// Assert
	suite.Require().NoError(err)
	suite.True(res.Changed())

	after, err := suite.service.Dashboard(suite.ctx)
	suite.Require().NoError(err)
	suite.Zero(after.Reports.Pending, "review drops the cached dashboard")
	suite.Equal(int64(1), after.Reports.Reviewed)

	queue, err = suite.service.PendingReports(suite.ctx, 1, 10)
	suite.Require().NoError(err)
	suite.Empty(queue.Items)

	history, err := suite.service.History(suite.ctx, moderation.EntityReport, r.ID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Equal("REVIEW", history[0].Mode)
}

func (suite *ModerationServiceTestSuite) TestResolveReportNeedsNotes() {
	post := testutil.SeedPosts(suite.T(), suite.db, 1, 7, 1, listingdomain.StatusApproved)[0]
	r := testutil.SeedReport(suite.T(), suite.db, post.ID, 11, reportdomain.StatusPending)

	_, err := suite.service.Moderate(suite.ctx, moderation.EntityReport, r.ID, "resolve", 2, "")
	suite.True(errors.IsBadRequest(err))

	outcome, err := suite.service.BulkModerate(suite.ctx, moderation.EntityReport, []int64{r.ID}, "resolve", 2, "post removed")
	suite.Require().NoError(err)
	suite.Equal(1, outcome.SucceededCount)
}

func (suite *ModerationServiceTestSuite) TestDashboardSignups() {
	suite.service.SetClock(func() time.Time { return testutil.BaseTime.Add(48 * time.Hour) })
	testutil.SeedUser(suite.T(), suite.db, "asha", accountdomain.StatusActive)

	d, err := suite.service.Dashboard(suite.ctx)

	suite.Require().NoError(err)
	suite.Require().Len(d.Signups, 12)
	suite.Equal("2024-04", d.Signups[0].Month)
	suite.Equal("2025-03", d.Signups[11].Month)
	suite.Equal(int64(1), d.Signups[11].Count)
}

func (suite *ModerationServiceTestSuite) TestHistoryUnknownEntity() {
	_, err := suite.service.History(suite.ctx, "category", 1)
	suite.True(errors.IsBadRequest(err))
}

func TestModerationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ModerationServiceTestSuite))
}
