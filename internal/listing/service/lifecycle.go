package service

import (
	"context"
	"fmt"

	"github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/internal/listing/repository"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// PostService runs the post moderation lifecycle and the post queries.
type PostService struct {
	repo     repository.PostRepository
	eventBus interfaces.EventBus
	cache    interfaces.Cache
	ttl      cache.TTLPolicy
	paging   pagination.Policy
	logger   interfaces.Logger
}

// NewPostService creates a new post service.
func NewPostService(
	repo repository.PostRepository,
	eventBus interfaces.EventBus,
	c interfaces.Cache,
	ttl cache.TTLPolicy,
	paging pagination.Policy,
	logger interfaces.Logger,
) *PostService {
	return &PostService{
		repo:     repo,
		eventBus: eventBus,
		cache:    c,
		ttl:      ttl,
		paging:   paging,
		logger:   logger,
	}
}

// Submit stores a new listing in the moderation queue.
func (s *PostService) Submit(ctx context.Context, post *domain.Post) error {
	post.Status = domain.StatusPending
	post.IsFeatured = false
	post.RejectionReason = ""
	if err := post.Validate(); err != nil {
		return err
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		s.logger.Error("Failed to create post",
			interfaces.Int64("user_id", post.UserID),
			interfaces.Error(err))
		return err
	}

	s.cache.InvalidateNamespace(cache.Dashboard())
	s.cache.InvalidateNamespace(cache.User(post.UserID))

	s.eventBus.PublishAsync(context.WithoutCancel(ctx), domain.NewPostSubmittedEvent(post))

	s.logger.Info("Post submitted",
		interfaces.Int64("post_id", post.ID),
		interfaces.Int64("user_id", post.UserID))

	return nil
}

// GetPost returns a post by ID. Posts are not cached.
func (s *PostService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	return s.repo.GetPost(ctx, id)
}

// Apply moves a post through one moderation step on behalf of actorID.
//
// The store update is conditional on the state the plan was computed
// from. Caches are invalidated only after it commits, so a reader may see
// the old state until then.
func (s *PostService) Apply(ctx context.Context, id int64, op domain.PostOp, actorID int64) (*moderation.Result, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := op.Plan(post)
	if err != nil {
		return nil, err
	}
	if t.Unchanged {
		return result(id, t, moderation.OutcomeUnchanged), nil
	}

	applied, err := s.repo.ApplyTransition(ctx, id, t, actorID)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to apply post transition",
			interfaces.Int64("post_id", id),
			interfaces.String("mode", op.Mode()),
			interfaces.Error(err))
		return nil, err
	}
	if !applied {
		return s.lostRace(ctx, id, op)
	}

	s.invalidate(post, t)
	s.eventBus.PublishAsync(context.WithoutCancel(ctx), domain.NewPostModeratedEvent(post, t, actorID))

	s.logger.WithContext(ctx).Info("Post moderated",
		interfaces.Int64("post_id", id),
		interfaces.Int64("admin_id", actorID),
		interfaces.String("mode", op.Mode()),
		interfaces.String("from", t.From.String()),
		interfaces.String("to", t.To.String()))

	return result(id, t, moderation.OutcomeApplied), nil
}

// lostRace explains a conditional update that matched no row. If the
// concurrent writer already reached the target state the request is a
// no-op, otherwise it is refused against the new state.
func (s *PostService) lostRace(ctx context.Context, id int64, op domain.PostOp) (*moderation.Result, error) {
	current, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := op.Plan(current)
	if err != nil {
		return nil, err
	}
	if t.Unchanged {
		return result(id, t, moderation.OutcomeUnchanged), nil
	}
	return nil, errors.PreconditionFailed(fmt.Sprintf(
		"post %d was modified concurrently and is now %s", id, current.State()))
}

func (s *PostService) invalidate(post *domain.Post, t domain.Transition) {
	s.cache.InvalidateNamespace(cache.Dashboard())
	s.cache.InvalidateNamespace(cache.User(post.UserID))

	if !t.VisibilityChanged() {
		return
	}
	n := s.cache.InvalidateNamespace(cache.FeedNamespace(post.CategoryID))
	s.cache.InvalidateNamespace(cache.NamespaceCategories)
	s.cache.InvalidateNamespace(cache.NamespaceSubCategories)
	s.cache.InvalidateNamespace(cache.FeaturedPosts())

	s.logger.Debug("Invalidated feed pages",
		interfaces.Int64("category_id", post.CategoryID),
		interfaces.Int("count", n))
}

// Transitioner binds op so the bulk coordinator can apply it by id.
func (s *PostService) Transitioner(op domain.PostOp) moderation.Transitioner {
	return moderation.TransitionerFunc(func(ctx context.Context, id int64, actorID int64) (*moderation.Result, error) {
		return s.Apply(ctx, id, op, actorID)
	})
}

func result(id int64, t domain.Transition, outcome moderation.Outcome) *moderation.Result {
	return &moderation.Result{
		EntityType: moderation.EntityPost,
		ID:         id,
		Action:     t.Op.Mode(),
		Outcome:    outcome,
		From:       t.From.String(),
		To:         t.To.String(),
	}
}
