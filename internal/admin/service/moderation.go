package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	accountdomain "github.com/narwhalmedia/classifieds/internal/account/domain"
	"github.com/narwhalmedia/classifieds/internal/admin/domain"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	referencedomain "github.com/narwhalmedia/classifieds/internal/reference/domain"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/logger"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

// historyLimit caps the audit rows returned for one entity.
const historyLimit = 100

// AuditReader reads the moderation audit trail.
type AuditReader interface {
	History(ctx context.Context, entityType string, entityID int64, limit int) ([]*repository.ModerationLog, error)
}

// Settings are the facade options that come from configuration.
type Settings struct {
	Service             string
	Version             string
	DefaultRejectReason string
	// Ping checks the store for SystemInfo. Nil reports it as unknown.
	Ping func(ctx context.Context) error
}

// ModerationService is the admin entry point for single and bulk
// moderation, the report queue, the admin lists, the dashboard and cache
// maintenance.
type ModerationService struct {
	posts      PostModerator
	users      UserModerator
	categories CategoryCatalog
	reports    ReportQueue
	audit      AuditReader
	bulk       *BulkCoordinator
	cache      interfaces.Cache
	ttl        cache.TTLPolicy
	settings   Settings
	logger     interfaces.Logger

	startedAt time.Time
	now       func() time.Time
}

// NewModerationService creates the admin facade.
func NewModerationService(
	posts PostModerator,
	users UserModerator,
	categories CategoryCatalog,
	reports ReportQueue,
	audit AuditReader,
	bulk *BulkCoordinator,
	c interfaces.Cache,
	ttl cache.TTLPolicy,
	settings Settings,
	logger interfaces.Logger,
) *ModerationService {
	return &ModerationService{
		posts:      posts,
		users:      users,
		categories: categories,
		reports:    reports,
		audit:      audit,
		bulk:       bulk,
		cache:      c,
		ttl:        ttl,
		settings:   settings,
		logger:     logger,
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

// Moderate applies one action to one post, user or report.
func (s *ModerationService) Moderate(
	ctx context.Context,
	entity moderation.EntityType,
	id int64,
	action string,
	adminID int64,
	reason string,
) (*moderation.Result, error) {
	t, err := s.transitioner(entity, action, reason)
	if err != nil {
		return nil, err
	}
	return t.Transition(ctx, id, adminID)
}

// BulkModerate applies one action to every id. Per-id problems are
// reported in the outcome; an error means the request itself was invalid.
// A bulk reject without a reason uses the configured default reason.
func (s *ModerationService) BulkModerate(
	ctx context.Context,
	entity moderation.EntityType,
	ids []int64,
	action string,
	adminID int64,
	reason string,
) (*domain.BulkOutcome, error) {
	if err := s.bulk.Validate(ids); err != nil {
		return nil, err
	}
	if entity == moderation.EntityPost && isReject(action) && strings.TrimSpace(reason) == "" {
		reason = s.settings.DefaultRejectReason
	}
	t, err := s.transitioner(entity, action, reason)
	if err != nil {
		return nil, err
	}

	// Per-id log lines of one batch share its request id.
	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, "")
	}
	outcome := s.bulk.Apply(ctx, t, ids, adminID)

	s.logger.WithContext(ctx).Info("Bulk moderation completed",
		interfaces.String("entity_type", string(entity)),
		interfaces.String("action", action),
		interfaces.Int64("admin_id", adminID),
		interfaces.Int("requested", outcome.RequestedCount),
		interfaces.Int("succeeded", outcome.SucceededCount),
		interfaces.Int("skipped", outcome.SkippedCount),
		interfaces.Int("failed", len(outcome.FailedIDs)))

	return outcome, nil
}

func (s *ModerationService) transitioner(entity moderation.EntityType, action, reason string) (moderation.Transitioner, error) {
	switch entity {
	case moderation.EntityPost:
		op, err := listingdomain.ParseOp(action, reason)
		if err != nil {
			return nil, err
		}
		return s.posts.Transitioner(op), nil
	case moderation.EntityUser:
		op, err := accountdomain.ParseOp(action)
		if err != nil {
			return nil, err
		}
		return s.users.Transitioner(op), nil
	case moderation.EntityReport:
		op, err := reportdomain.ParseOp(action, reason)
		if err != nil {
			return nil, err
		}
		return s.reports.Transitioner(op), nil
	}
	return nil, errors.BadRequest(fmt.Sprintf("unknown entity type %q", entity))
}

func isReject(action string) bool {
	return strings.EqualFold(strings.TrimSpace(action), "reject")
}

// QueryPosts lists posts for moderation.
func (s *ModerationService) QueryPosts(
	ctx context.Context,
	filter listingdomain.PostFilter,
	sort listingdomain.PostSort,
	page, size int,
) (*pagination.Page[*listingdomain.Post], error) {
	return s.posts.QueryPosts(ctx, filter, sort, page, size)
}

// QueryUsers lists accounts for moderation.
func (s *ModerationService) QueryUsers(
	ctx context.Context,
	filter accountdomain.UserFilter,
	sort accountdomain.UserSort,
	page, size int,
) (*pagination.Page[*accountdomain.User], error) {
	return s.users.QueryUsers(ctx, filter, sort, page, size)
}

// QueryCategories lists categories for management.
func (s *ModerationService) QueryCategories(
	ctx context.Context,
	filter referencedomain.CategoryFilter,
	sort referencedomain.CategorySort,
	page, size int,
) (*pagination.Page[*referencedomain.Category], error) {
	return s.categories.QueryCategories(ctx, filter, sort, page, size)
}

// History returns the moderation audit trail of one entity, newest first.
func (s *ModerationService) History(ctx context.Context, entity moderation.EntityType, id int64) ([]*repository.ModerationLog, error) {
	switch entity {
	case moderation.EntityPost, moderation.EntityUser, moderation.EntityReport:
	default:
		return nil, errors.BadRequest(fmt.Sprintf("unknown entity type %q", entity))
	}
	return s.audit.History(ctx, string(entity), id, historyLimit)
}

// InvalidateCache drops one namespace, or everything when namespace is
// empty. It returns the number of entries removed.
func (s *ModerationService) InvalidateCache(namespace string) int {
	namespace = strings.TrimSpace(namespace)
	var removed int
	if namespace == "" {
		removed = s.cache.Flush()
	} else {
		removed = s.cache.InvalidateNamespace(namespace)
	}

	s.logger.Info("Cache invalidated",
		interfaces.String("namespace", namespace),
		interfaces.Int("removed", removed))

	return removed
}
