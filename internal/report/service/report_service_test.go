package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	listingrepo "github.com/narwhalmedia/classifieds/internal/listing/repository"
	listingservice "github.com/narwhalmedia/classifieds/internal/listing/service"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/internal/report/repository"
	"github.com/narwhalmedia/classifieds/internal/report/service"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/logger"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
	"github.com/narwhalmedia/classifieds/test/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []interfaces.Event
}

func (r *recorder) Handle(_ context.Context, e interfaces.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) EventType() string { return "recorder" }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type ReportServiceTestSuite struct {
	suite.Suite

	ctx      context.Context
	db       *gorm.DB
	cache    *cache.ReferenceCache
	eventBus *events.InMemoryEventBus
	recorder *recorder
	service  *service.ReportService
	post     *listingdomain.Post
}

func (suite *ReportServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	suite.cache = cache.New(cache.WithCleanupInterval(0))
	suite.eventBus = events.NewInMemoryEventBus(logger.NewNoop())
	suite.recorder = &recorder{}
	for _, t := range domain.AllReportEvents {
		suite.Require().NoError(suite.eventBus.Subscribe(t, suite.recorder))
	}

	paging := pagination.Policy{DefaultSize: 2, MaxSize: 50}
	posts := listingservice.NewPostService(
		listingrepo.NewGormRepository(suite.db),
		suite.eventBus,
		suite.cache,
		cache.DefaultTTLPolicy(),
		paging,
		logger.NewNoop(),
	)
	suite.service = service.NewReportService(
		repository.NewGormRepository(suite.db),
		posts,
		suite.eventBus,
		suite.cache,
		paging,
		logger.NewNoop(),
	)
	suite.post = testutil.SeedPosts(suite.T(), suite.db, 1, 7, 3, listingdomain.StatusApproved)[0]
}

func (suite *ReportServiceTestSuite) TearDownTest() {
	_ = suite.eventBus.Stop()
	_ = suite.cache.Close()
}

// warmDashboard stores a dashboard entry so invalidation can be observed.
func (suite *ReportServiceTestSuite) warmDashboard() {
	_, err := cache.Fetch(suite.ctx, suite.cache, cache.Dashboard(), time.Minute,
		func(context.Context) (string, error) { return "snapshot", nil })
	suite.Require().NoError(err)
	suite.Equal(1, suite.cache.Stats().Entries)
}

func (suite *ReportServiceTestSuite) TestFile_QueuesPendingReport() {
	// Arrange
	suite.warmDashboard()
	r := &domain.Report{PostID: suite.post.ID, ReportedBy: 11, Reason: "  wrong price ", Status: domain.StatusResolved}

	// Act
	err := suite.service.File(suite.ctx, r)

	// Assert
	suite.Require().NoError(err)
	suite.NotZero(r.ID)
	suite.Equal("wrong price", r.Reason)
	suite.Equal(domain.StatusPending, r.Status)
	suite.Zero(suite.cache.Stats().Entries, "filing drops the dashboard")
	suite.Eventually(func() bool {
		return len(suite.recorder.types()) == 1
	}, time.Second, 10*time.Millisecond)
	suite.Equal([]string{domain.EventReportFiled}, suite.recorder.types())
}

func (suite *ReportServiceTestSuite) TestFile_Invalid() {
	err := suite.service.File(suite.ctx, &domain.Report{PostID: suite.post.ID, ReportedBy: 11, Reason: "  "})
	suite.True(errors.IsBadRequest(err))

	err = suite.service.File(suite.ctx, &domain.Report{PostID: suite.post.ID, Reason: "spam"})
	suite.True(errors.IsBadRequest(err))

	err = suite.service.File(suite.ctx, &domain.Report{PostID: suite.post.ID, ReportedBy: 11, Reason: strings.Repeat("x", 101)})
	suite.True(errors.IsBadRequest(err))

	err = suite.service.File(suite.ctx, &domain.Report{PostID: 999, ReportedBy: 11, Reason: "spam"})
	suite.True(errors.IsNotFound(err))
}

func (suite *ReportServiceTestSuite) TestFile_DeletedPostRefused() {
	gone := testutil.SeedPosts(suite.T(), suite.db, 1, 7, 3, listingdomain.StatusDeleted)[0]

	err := suite.service.File(suite.ctx, &domain.Report{PostID: gone.ID, ReportedBy: 11, Reason: "spam"})

	suite.True(errors.IsPreconditionFailed(err))
}

func (suite *ReportServiceTestSuite) TestApply_IsIdempotent() {
	// Arrange
	r := testutil.SeedReport(suite.T(), suite.db, suite.post.ID, 11, domain.StatusPending)
	suite.warmDashboard()

	// Act
	first, err := suite.service.Apply(suite.ctx, r.ID, domain.Review{Notes: "checking with seller"}, 2)
	suite.Require().NoError(err)
	second, err := suite.service.Apply(suite.ctx, r.ID, domain.Review{}, 2)
	suite.Require().NoError(err)

	// Assert
	suite.Equal(moderation.OutcomeApplied, first.Outcome)
	suite.Equal(moderation.EntityReport, first.EntityType)
	suite.Equal("pending", first.From)
	suite.Equal("reviewed", first.To)
	suite.Equal(moderation.OutcomeUnchanged, second.Outcome)
	suite.Zero(suite.cache.Stats().Entries)

	got, err := suite.service.GetReport(suite.ctx, r.ID)
	suite.Require().NoError(err)
	suite.Equal("checking with seller", got.ReviewNotes)
}

func (suite *ReportServiceTestSuite) TestApply_ResolvedCannotBeReviewed() {
	r := testutil.SeedReport(suite.T(), suite.db, suite.post.ID, 11, domain.StatusPending)
	_, err := suite.service.Transitioner(domain.Resolve{Notes: "seller fixed price"}).Transition(suite.ctx, r.ID, 2)
	suite.Require().NoError(err)

	_, err = suite.service.Apply(suite.ctx, r.ID, domain.Review{}, 2)

	suite.True(errors.IsPreconditionFailed(err))
}

func (suite *ReportServiceTestSuite) TestPendingReportsPages() {
	// Arrange
	for i := int64(0); i < 3; i++ {
		testutil.SeedReport(suite.T(), suite.db, suite.post.ID, 11+i, domain.StatusPending)
	}
	testutil.SeedReport(suite.T(), suite.db, suite.post.ID, 20, domain.StatusResolved)

	// Act
	first, err := suite.service.PendingReports(suite.ctx, 1, 0)
	suite.Require().NoError(err)
	second, err := suite.service.PendingReports(suite.ctx, 2, 0)
	suite.Require().NoError(err)

	// Assert
	suite.Equal(int64(3), first.TotalRecords)
	suite.Len(first.Items, 2)
	suite.True(first.HasNext)
	suite.Len(second.Items, 1)
	suite.False(second.HasNext)
	for _, r := range append(first.Items, second.Items...) {
		suite.Equal(domain.StatusPending, r.Status)
	}
}

func (suite *ReportServiceTestSuite) TestQueryReports_UnknownStatus() {
	_, err := suite.service.QueryReports(suite.ctx, domain.ReportFilter{Status: "escalated"}, 1, 10)
	suite.True(errors.IsBadRequest(err))
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
