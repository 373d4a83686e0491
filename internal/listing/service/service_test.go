package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/internal/listing/service"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/logger"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// MockPostRepository is a mock for the post repository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	if args.Error(0) == nil {
		post.ID = 900
	}
	return args.Error(0)
}

func (m *MockPostRepository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostRepository) ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error) {
	args := m.Called(ctx, id, t, actorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) QueryPosts(ctx context.Context, filter domain.PostFilter, sort domain.PostSort, limit, offset int) ([]*domain.Post, int64, error) {
	args := m.Called(ctx, filter, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) FeaturedPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *MockPostRepository) Stats(ctx context.Context, since time.Time) (*domain.PostStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostStats), args.Error(1)
}

// recorder collects published events
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

type PostServiceTestSuite struct {
	suite.Suite

	ctx      context.Context
	mockRepo *MockPostRepository
	cache    *cache.ReferenceCache
	eventBus *events.InMemoryEventBus
	recorder *recorder
	service  *service.PostService
}

func (suite *PostServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = new(MockPostRepository)
	suite.cache = cache.New(cache.WithCleanupInterval(0))
	suite.eventBus = events.NewInMemoryEventBus(logger.NewNoop())
	suite.recorder = &recorder{}
	for _, t := range domain.AllPostEvents {
		suite.Require().NoError(suite.eventBus.Subscribe(t, suite.recorder))
	}

	suite.service = service.NewPostService(
		suite.mockRepo,
		suite.eventBus,
		suite.cache,
		cache.DefaultTTLPolicy(),
		pagination.Policy{DefaultSize: 20, MaxSize: 100},
		logger.NewNoop(),
	)
}

func (suite *PostServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	_ = suite.eventBus.Stop()
	_ = suite.cache.Close()
}

func pendingPost() *domain.Post {
	return &domain.Post{ID: 1, UserID: 2, CategoryID: 3, Title: "Tractor", Status: domain.StatusPending}
}

func approvedPost() *domain.Post {
	return &domain.Post{ID: 1, UserID: 2, CategoryID: 3, Title: "Tractor", Status: domain.StatusApproved}
}

func feedFilter(categoryID int64) domain.PostFilter {
	return domain.PostFilter{Status: domain.StatusApproved, CategoryID: categoryID}
}

// warm fills the caches that a moderation step may invalidate.
func (suite *PostServiceTestSuite) warm() {
	suite.mockRepo.On("QueryPosts", mock.Anything, feedFilter(3), domain.SortRecent, 20, 0).
		Return([]*domain.Post{}, int64(0), nil).Once()
	suite.mockRepo.On("QueryPosts", mock.Anything, feedFilter(4), domain.SortRecent, 20, 0).
		Return([]*domain.Post{}, int64(0), nil).Once()

	_, err := suite.service.QueryPosts(suite.ctx, feedFilter(3), domain.SortRecent, 1, 20)
	suite.Require().NoError(err)
	_, err = suite.service.QueryPosts(suite.ctx, feedFilter(4), domain.SortRecent, 1, 20)
	suite.Require().NoError(err)

	for _, key := range []string{cache.Dashboard(), cache.User(2), cache.Categories(), cache.FeaturedPosts()} {
		_, err := suite.cache.GetOrPopulate(suite.ctx, key, time.Hour, func(context.Context) (interface{}, error) {
			return "warm", nil
		})
		suite.Require().NoError(err)
	}
	suite.Equal(6, suite.cache.Stats().Entries)
}

func (suite *PostServiceTestSuite) TestApply_ApproveInvalidatesFeed() {
	// Arrange
	suite.warm()
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()
	suite.mockRepo.On("ApplyTransition", mock.Anything, int64(1), mock.AnythingOfType("domain.Transition"), int64(42)).
		Return(true, nil).Once()

	// Act
	res, err := suite.service.Apply(suite.ctx, 1, domain.Approve{}, 42)

	// Assert
	suite.Require().NoError(err)
	suite.Equal(moderation.OutcomeApplied, res.Outcome)
	suite.Equal("pending", res.From)
	suite.Equal("approved", res.To)
	suite.Equal("APPROVE", res.Action)

	// Only the other category's feed page survives.
	suite.Equal(1, suite.cache.Stats().Entries)

	suite.Require().NoError(suite.eventBus.Stop())
	suite.Equal([]string{domain.EventPostApproved}, suite.recorder.types())
}

func (suite *PostServiceTestSuite) TestApply_RejectKeepsFeed() {
	// Arrange
	suite.warm()
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()
	suite.mockRepo.On("ApplyTransition", mock.Anything, int64(1), mock.MatchedBy(func(t domain.Transition) bool {
		return t.Reason != nil && *t.Reason == "blurry photos"
	}), int64(42)).Return(true, nil).Once()

	// Act
	res, err := suite.service.Apply(suite.ctx, 1, domain.Reject{Reason: "blurry photos"}, 42)

	// Assert
	suite.Require().NoError(err)
	suite.True(res.Changed())

	// A pending post never was in the feed, so only the dashboard and
	// the owner's profile are dropped.
	suite.Equal(4, suite.cache.Stats().Entries)
}

func (suite *PostServiceTestSuite) TestApply_AlreadyInStateIsNoop() {
	// Arrange
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(approvedPost(), nil).Once()

	// Act
	res, err := suite.service.Apply(suite.ctx, 1, domain.Approve{}, 42)

	// Assert
	suite.Require().NoError(err)
	suite.Equal(moderation.OutcomeUnchanged, res.Outcome)
	suite.False(res.Changed())
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	suite.Require().NoError(suite.eventBus.Stop())
	suite.Empty(suite.recorder.types())
}

func (suite *PostServiceTestSuite) TestApply_PreconditionFailed() {
	// Arrange
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()

	// Act
	res, err := suite.service.Apply(suite.ctx, 1, domain.Feature{}, 42)

	// Assert
	suite.Nil(res)
	suite.True(errors.IsPreconditionFailed(err))
}

func (suite *PostServiceTestSuite) TestApply_NotFound() {
	suite.mockRepo.On("GetPost", mock.Anything, int64(102)).Return(nil, errors.NotFound("entity 102 not found")).Once()

	res, err := suite.service.Apply(suite.ctx, 102, domain.Approve{}, 42)

	suite.Nil(res)
	suite.True(errors.IsNotFound(err))
}

func (suite *PostServiceTestSuite) TestApply_StoreUnavailable() {
	suite.warm()
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()
	suite.mockRepo.On("ApplyTransition", mock.Anything, int64(1), mock.Anything, int64(42)).
		Return(false, errors.StoreUnavailable("apply transition", context.DeadlineExceeded)).Once()

	res, err := suite.service.Apply(suite.ctx, 1, domain.Approve{}, 42)

	suite.Nil(res)
	suite.True(errors.IsStoreUnavailable(err))
	// Nothing committed, so nothing is invalidated.
	suite.Equal(6, suite.cache.Stats().Entries)
}

func (suite *PostServiceTestSuite) TestApply_LostRaceToConflictingWriter() {
	// Arrange: another admin approved the post between our read and write
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()
	suite.mockRepo.On("ApplyTransition", mock.Anything, int64(1), mock.Anything, int64(42)).Return(false, nil).Once()
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(approvedPost(), nil).Once()

	// Act
	res, err := suite.service.Apply(suite.ctx, 1, domain.Reject{Reason: "spam"}, 42)

	// Assert
	suite.Nil(res)
	suite.True(errors.IsPreconditionFailed(err))
}

func (suite *PostServiceTestSuite) TestApply_LostRaceToSameChange() {
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()
	suite.mockRepo.On("ApplyTransition", mock.Anything, int64(1), mock.Anything, int64(42)).Return(false, nil).Once()
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(approvedPost(), nil).Once()

	res, err := suite.service.Apply(suite.ctx, 1, domain.Approve{}, 42)

	suite.Require().NoError(err)
	suite.Equal(moderation.OutcomeUnchanged, res.Outcome)
}

func (suite *PostServiceTestSuite) TestApply_StaleReadWindowClosesAfterCommit() {
	// Arrange
	stale := []*domain.Post{}
	fresh := []*domain.Post{approvedPost()}
	suite.mockRepo.On("QueryPosts", mock.Anything, feedFilter(3), domain.SortRecent, 20, 0).
		Return(stale, int64(0), nil).Once()
	_, err := suite.service.QueryPosts(suite.ctx, feedFilter(3), domain.SortRecent, 1, 20)
	suite.Require().NoError(err)

	var during *pagination.Page[*domain.Post]
	suite.mockRepo.On("GetPost", mock.Anything, int64(1)).Return(pendingPost(), nil).Once()
	suite.mockRepo.On("ApplyTransition", mock.Anything, int64(1), mock.Anything, int64(42)).
		Run(func(mock.Arguments) {
			// Between the store write and the invalidation readers are
			// still served the cached page.
			during, _ = suite.service.QueryPosts(suite.ctx, feedFilter(3), domain.SortRecent, 1, 20)
		}).
		Return(true, nil).Once()
	suite.mockRepo.On("QueryPosts", mock.Anything, feedFilter(3), domain.SortRecent, 20, 0).
		Return(fresh, int64(1), nil).Once()

	// Act
	_, err = suite.service.Apply(suite.ctx, 1, domain.Approve{}, 42)
	suite.Require().NoError(err)
	after, err := suite.service.QueryPosts(suite.ctx, feedFilter(3), domain.SortRecent, 1, 20)

	// Assert
	suite.Require().NoError(err)
	suite.Require().NotNil(during)
	suite.Empty(during.Items)
	suite.Len(after.Items, 1)
	suite.Equal(int64(1), after.TotalRecords)
}

func (suite *PostServiceTestSuite) TestQueryPosts_PublicFeedCached() {
	// Arrange
	items := []*domain.Post{approvedPost()}
	suite.mockRepo.On("QueryPosts", mock.Anything, feedFilter(3), domain.SortPopular, 10, 10).
		Return(items, int64(11), nil).Once()

	// Act
	first, err := suite.service.QueryPosts(suite.ctx, feedFilter(3), domain.SortPopular, 2, 10)
	suite.Require().NoError(err)
	second, err := suite.service.QueryPosts(suite.ctx, feedFilter(3), domain.SortPopular, 2, 10)
	suite.Require().NoError(err)

	// Assert
	suite.Equal(first.Items, second.Items)
	suite.Equal(2, second.TotalPages)
	suite.False(second.HasNext)
	suite.True(second.HasPrevious)
	suite.Equal(int64(1), suite.cache.Stats().Hits)
}

func (suite *PostServiceTestSuite) TestQueryPosts_KeywordWithSeparator() {
	filter := domain.PostFilter{Status: domain.StatusApproved, CategoryID: 3, Keyword: "model:x"}
	suite.mockRepo.On("QueryPosts", mock.Anything, filter, domain.SortRecent, 20, 0).
		Return([]*domain.Post{}, int64(0), nil).Once()
	_, err := suite.service.QueryPosts(suite.ctx, filter, domain.SortRecent, 1, 20)
	suite.Require().NoError(err)

	suite.Equal(1, suite.cache.InvalidateNamespace(cache.FeedNamespace(3)))
}

func (suite *PostServiceTestSuite) TestQueryPosts_AdminQueriesNotCached() {
	filter := domain.PostFilter{Status: domain.StatusPending}
	suite.mockRepo.On("QueryPosts", mock.Anything, filter, domain.SortRecent, 20, 0).
		Return([]*domain.Post{pendingPost()}, int64(1), nil).Twice()

	for i := 0; i < 2; i++ {
		page, err := suite.service.QueryPosts(suite.ctx, filter, domain.SortRecent, 1, 0)
		suite.Require().NoError(err)
		suite.Len(page.Items, 1)
	}
	suite.Zero(suite.cache.Stats().Entries)
}

func (suite *PostServiceTestSuite) TestQueryPosts_InvalidWindow() {
	_, err := suite.service.QueryPosts(suite.ctx, domain.PostFilter{}, domain.SortRecent, 0, 20)
	suite.True(errors.IsBadRequest(err))

	_, err = suite.service.QueryPosts(suite.ctx, domain.PostFilter{}, domain.SortRecent, 1, 101)
	suite.True(errors.IsBadRequest(err))
}

func (suite *PostServiceTestSuite) TestQueryPosts_PageToken() {
	// Arrange
	tokens, err := pagination.NewCursorEncoder([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	suite.Require().NoError(err)
	svc := service.NewPostService(suite.mockRepo, suite.eventBus, suite.cache, cache.DefaultTTLPolicy(),
		pagination.Policy{DefaultSize: 20, MaxSize: 100, Tokens: tokens}, logger.NewNoop())
	filter := domain.PostFilter{Status: domain.StatusPending}

	suite.mockRepo.On("QueryPosts", mock.Anything, filter, domain.SortRecent, 20, 0).
		Return([]*domain.Post{pendingPost()}, int64(45), nil).Once()
	suite.mockRepo.On("QueryPosts", mock.Anything, filter, domain.SortRecent, 20, 20).
		Return([]*domain.Post{pendingPost()}, int64(45), nil).Once()

	// Act
	first, err := svc.QueryPosts(suite.ctx, filter, domain.SortRecent, 1, 20)
	suite.Require().NoError(err)
	second, err := svc.QueryPostsAfter(suite.ctx, filter, domain.SortRecent, first.NextPageToken)

	// Assert
	suite.Require().NoError(err)
	suite.NotEmpty(first.NextPageToken)
	suite.Equal(2, second.PageNumber)

	_, err = svc.QueryPostsAfter(suite.ctx, domain.PostFilter{Status: domain.StatusApproved}, domain.SortRecent, first.NextPageToken)
	suite.True(errors.IsBadRequest(err))
}

func (suite *PostServiceTestSuite) TestFeaturedCached() {
	suite.mockRepo.On("FeaturedPosts", mock.Anything, 12).Return([]*domain.Post{approvedPost()}, nil).Once()

	for i := 0; i < 3; i++ {
		posts, err := suite.service.Featured(suite.ctx)
		suite.Require().NoError(err)
		suite.Len(posts, 1)
	}
}

func (suite *PostServiceTestSuite) TestSubmit() {
	// Arrange
	suite.warm()
	post := &domain.Post{UserID: 2, CategoryID: 3, Title: "Buffalo", Status: domain.StatusApproved, IsFeatured: true}
	suite.mockRepo.On("CreatePost", mock.Anything, post).Return(nil).Once()

	// Act
	err := suite.service.Submit(suite.ctx, post)

	// Assert
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, post.Status)
	suite.False(post.IsFeatured)
	suite.Equal(4, suite.cache.Stats().Entries)

	suite.Require().NoError(suite.eventBus.Stop())
	suite.Equal([]string{domain.EventPostSubmitted}, suite.recorder.types())
}

func (suite *PostServiceTestSuite) TestSubmit_Invalid() {
	err := suite.service.Submit(suite.ctx, &domain.Post{UserID: 2, CategoryID: 3})
	suite.True(errors.IsBadRequest(err))
}

func TestPostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostServiceTestSuite))
}
