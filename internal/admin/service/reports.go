package service

import (
	"context"

	"github.com/narwhalmedia/classifieds/internal/admin/domain"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// QueryReports lists reports with the reported post attached.
func (s *ModerationService) QueryReports(
	ctx context.Context,
	filter reportdomain.ReportFilter,
	page, size int,
) (*pagination.Page[*domain.ReportQueueRow], error) {
	reports, err := s.reports.QueryReports(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	return s.queueRows(ctx, reports)
}

// PendingReports returns one page of the review queue, oldest first.
func (s *ModerationService) PendingReports(ctx context.Context, page, size int) (*pagination.Page[*domain.ReportQueueRow], error) {
	reports, err := s.reports.PendingReports(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return s.queueRows(ctx, reports)
}

func (s *ModerationService) queueRows(
	ctx context.Context,
	reports *pagination.Page[*reportdomain.Report],
) (*pagination.Page[*domain.ReportQueueRow], error) {
	posts := make(map[int64]*listingdomain.Post, len(reports.Items))
	for _, r := range reports.Items {
		if _, seen := posts[r.PostID]; seen {
			continue
		}
		p, err := s.posts.GetPost(ctx, r.PostID)
		switch {
		case errors.IsNotFound(err):
			s.logger.WithContext(ctx).Warn("Reported post is missing",
				interfaces.Int64("report_id", r.ID),
				interfaces.Int64("post_id", r.PostID))
		case err != nil:
			return nil, err
		}
		posts[r.PostID] = p
	}

	return pagination.Map(reports, func(r *reportdomain.Report) *domain.ReportQueueRow {
		row := &domain.ReportQueueRow{Report: r}
		if p := posts[r.PostID]; p != nil {
			row.PostTitle = p.Title
			row.PostStatus = p.Status
		}
		return row
	}), nil
}
