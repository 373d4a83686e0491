package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/internal/report/constants"
	"github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/internal/report/repository"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// PostLookup resolves the post a report is filed against.
type PostLookup interface {
	GetPost(ctx context.Context, id int64) (*listingdomain.Post, error)
}

// ReportService runs the post-report review queue.
type ReportService struct {
	repo     repository.ReportRepository
	posts    PostLookup
	eventBus interfaces.EventBus
	cache    interfaces.Cache
	paging   pagination.Policy
	logger   interfaces.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	repo repository.ReportRepository,
	posts PostLookup,
	eventBus interfaces.EventBus,
	c interfaces.Cache,
	paging pagination.Policy,
	logger interfaces.Logger,
) *ReportService {
	return &ReportService{
		repo:     repo,
		posts:    posts,
		eventBus: eventBus,
		cache:    c,
		paging:   paging,
		logger:   logger,
	}
}

// File queues a new report against a live post.
func (s *ReportService) File(ctx context.Context, report *domain.Report) error {
	report.Reason = strings.TrimSpace(report.Reason)
	report.Description = strings.TrimSpace(report.Description)
	if report.PostID <= 0 || report.ReportedBy <= 0 {
		return errors.BadRequest("post and reporter are required")
	}
	if report.Reason == "" {
		return errors.BadRequest("report reason is required")
	}
	if len(report.Reason) > constants.MaxReasonLength {
		return errors.BadRequest(fmt.Sprintf("report reason must not exceed %d characters", constants.MaxReasonLength))
	}
	if len(report.Description) > constants.MaxDescriptionLength {
		return errors.BadRequest(fmt.Sprintf("report description must not exceed %d characters", constants.MaxDescriptionLength))
	}

	post, err := s.posts.GetPost(ctx, report.PostID)
	if err != nil {
		return err
	}
	if post.Status == listingdomain.StatusDeleted {
		return errors.PreconditionFailed(fmt.Sprintf("post %d is deleted", post.ID))
	}

	report.Status = domain.StatusPending
	report.ReviewedBy = nil
	report.ReviewNotes = ""
	report.ReviewedAt = nil
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return err
	}

	s.cache.InvalidateNamespace(cache.Dashboard())
	s.eventBus.PublishAsync(context.WithoutCancel(ctx), domain.NewReportFiledEvent(report))

	s.logger.WithContext(ctx).Info("Report filed",
		interfaces.Int64("report_id", report.ID),
		interfaces.Int64("post_id", report.PostID),
		interfaces.Int64("reported_by", report.ReportedBy))

	return nil
}

// GetReport retrieves a report by ID.
func (s *ReportService) GetReport(ctx context.Context, id int64) (*domain.Report, error) {
	return s.repo.GetReport(ctx, id)
}

// Apply reviews or resolves a report on behalf of actorID.
func (s *ReportService) Apply(ctx context.Context, id int64, op domain.ReportOp, actorID int64) (*moderation.Result, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := op.Plan(report)
	if err != nil {
		return nil, err
	}
	if t.Unchanged {
		return result(id, t, moderation.OutcomeUnchanged), nil
	}

	applied, err := s.repo.ApplyTransition(ctx, id, t, actorID)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to apply report transition",
			interfaces.Int64("report_id", id),
			interfaces.String("mode", op.Mode()),
			interfaces.Error(err))
		return nil, err
	}
	if !applied {
		current, err := s.repo.GetReport(ctx, id)
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
			"report %d was modified concurrently and is now %s", id, current.Status))
	}

	s.cache.InvalidateNamespace(cache.Dashboard())
	s.eventBus.PublishAsync(context.WithoutCancel(ctx), domain.NewReportModeratedEvent(report, t, actorID))

	s.logger.WithContext(ctx).Info("Report moderated",
		interfaces.Int64("report_id", id),
		interfaces.Int64("post_id", report.PostID),
		interfaces.Int64("admin_id", actorID),
		interfaces.String("mode", op.Mode()),
		interfaces.String("from", string(t.From)),
		interfaces.String("to", string(t.To)))

	return result(id, t, moderation.OutcomeApplied), nil
}

// Transitioner binds op so the bulk coordinator can apply it by id.
func (s *ReportService) Transitioner(op domain.ReportOp) moderation.Transitioner {
	return moderation.TransitionerFunc(func(ctx context.Context, id int64, actorID int64) (*moderation.Result, error) {
		return s.Apply(ctx, id, op, actorID)
	})
}

// QueryReports returns one page of reports, oldest first. Report lists are
// never cached.
func (s *ReportService) QueryReports(
	ctx context.Context,
	filter domain.ReportFilter,
	page, size int,
) (*pagination.Page[*domain.Report], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("unknown report status %q", filter.Status))
	}
	req, err := s.paging.Resolve(page, size, "", "")
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.QueryReports(ctx, filter, req.Size, req.Offset())
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, req), nil
}

// PendingReports returns one page of the review queue.
func (s *ReportService) PendingReports(ctx context.Context, page, size int) (*pagination.Page[*domain.Report], error) {
	return s.QueryReports(ctx, domain.ReportFilter{Status: domain.StatusPending}, page, size)
}

// Stats returns the queue counters for the dashboard.
func (s *ReportService) Stats(ctx context.Context, since time.Time) (*domain.ReportStats, error) {
	return s.repo.Stats(ctx, since)
}

func result(id int64, t domain.Transition, outcome moderation.Outcome) *moderation.Result {
	return &moderation.Result{
		EntityType: moderation.EntityReport,
		ID:         id,
		Action:     t.Op.Mode(),
		Outcome:    outcome,
		From:       string(t.From),
		To:         string(t.To),
	}
}
