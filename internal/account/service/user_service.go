package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/narwhalmedia/classifieds/internal/account/constants"
	"github.com/narwhalmedia/classifieds/internal/account/domain"
	"github.com/narwhalmedia/classifieds/internal/account/repository"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// UserService handles account status moderation and profile reads.
type UserService struct {
	repo     repository.UserRepository
	eventBus interfaces.EventBus
	cache    interfaces.Cache
	ttl      cache.TTLPolicy
	paging   pagination.Policy
	logger   interfaces.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.UserRepository,
	eventBus interfaces.EventBus,
	c interfaces.Cache,
	ttl cache.TTLPolicy,
	paging pagination.Policy,
	logger interfaces.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		eventBus: eventBus,
		cache:    c,
		ttl:      ttl,
		paging:   paging,
		logger:   logger,
	}
}

// Register creates an active account.
func (s *UserService) Register(ctx context.Context, user *domain.User) error {
	// Normalize username and email
	user.UserName = strings.ToLower(strings.TrimSpace(user.UserName))
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Mobile = strings.TrimSpace(user.Mobile)

	if user.UserName == "" || user.Email == "" {
		return errors.BadRequest("username and email are required")
	}
	if len(user.UserName) > constants.MaxUserNameLength {
		return errors.BadRequest(fmt.Sprintf("username must not exceed %d characters", constants.MaxUserNameLength))
	}
	if len(user.Mobile) > constants.MaxMobileLength {
		return errors.BadRequest("mobile number is too long")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return errors.BadRequest("email address is invalid")
	}
	user.Status = domain.StatusActive

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	s.cache.InvalidateNamespace(cache.Dashboard())

	s.logger.Info("User registered",
		interfaces.Int64("user_id", user.ID),
		interfaces.String("username", user.UserName))

	return nil
}

// GetUser retrieves an account by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// Profile returns the account with its post counters, cached per user.
func (s *UserService) Profile(ctx context.Context, id int64) (*domain.Profile, error) {
	key := cache.User(id)
	return cache.Fetch(ctx, s.cache, key, s.ttl.For(key), func(ctx context.Context) (*domain.Profile, error) {
		s.logger.Debug("Loading user profile", interfaces.Int64("user_id", id))
		return s.repo.LoadProfile(ctx, id)
	})
}

// Apply changes an account's status on behalf of actorID.
func (s *UserService) Apply(ctx context.Context, id int64, op domain.UserOp, actorID int64) (*moderation.Result, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := op.Plan(user)
	if err != nil {
		return nil, err
	}
	if t.Unchanged {
		return result(id, t, moderation.OutcomeUnchanged), nil
	}

	applied, err := s.repo.ApplyTransition(ctx, id, t, actorID)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to apply user transition",
			interfaces.Int64("user_id", id),
			interfaces.String("mode", op.Mode()),
			interfaces.Error(err))
		return nil, err
	}
	if !applied {
		current, err := s.repo.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		retry, err := op.Plan(current)
		if err != nil {
			return nil, err
		}
		if retry.Unchanged {
			return result(id, retry, moderation.OutcomeUnchanged), nil
		}
		return nil, errors.PreconditionFailed(fmt.Sprintf(
			"user %d was modified concurrently and is now %s", id, current.Status))
	}

	s.cache.InvalidateNamespace(cache.User(id))
	s.cache.InvalidateNamespace(cache.Dashboard())

	s.eventBus.PublishAsync(context.WithoutCancel(ctx), domain.NewUserModeratedEvent(id, t, actorID))

	s.logger.WithContext(ctx).Info("User moderated",
		interfaces.Int64("user_id", id),
		interfaces.Int64("admin_id", actorID),
		interfaces.String("mode", op.Mode()),
		interfaces.String("from", string(t.From)),
		interfaces.String("to", string(t.To)))

	return result(id, t, moderation.OutcomeApplied), nil
}

// Transitioner binds op so the bulk coordinator can apply it by id.
func (s *UserService) Transitioner(op domain.UserOp) moderation.Transitioner {
	return moderation.TransitionerFunc(func(ctx context.Context, id int64, actorID int64) (*moderation.Result, error) {
		return s.Apply(ctx, id, op, actorID)
	})
}

// QueryUsers returns one page of accounts. User lists are never cached.
func (s *UserService) QueryUsers(
	ctx context.Context,
	filter domain.UserFilter,
	sort domain.UserSort,
	page, size int,
) (*pagination.Page[*domain.User], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	req, err := s.paging.Resolve(page, size, "", "")
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.QueryUsers(ctx, filter, sort, req.Size, req.Offset())
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, req), nil
}

// Stats returns the account counters for the dashboard.
func (s *UserService) Stats(ctx context.Context, since time.Time) (*domain.UserStats, error) {
	return s.repo.Stats(ctx, since)
}

// MonthlySignups returns account registrations for the months calendar
// months ending with the one that contains now.
func (s *UserService) MonthlySignups(ctx context.Context, now time.Time, months int) ([]domain.MonthlyCount, error) {
	if months <= 0 {
		return nil, errors.BadRequest("months must be positive")
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.repo.MonthlySignups(ctx, first.AddDate(0, -(months-1), 0), months)
}

func result(id int64, t domain.Transition, outcome moderation.Outcome) *moderation.Result {
	return &moderation.Result{
		EntityType: moderation.EntityUser,
		ID:         id,
		Action:     t.Op.Mode(),
		Outcome:    outcome,
		From:       string(t.From),
		To:         string(t.To),
	}
}
