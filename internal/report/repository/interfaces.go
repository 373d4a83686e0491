package repository

import (
	"context"
	"time"

	"github.com/narwhalmedia/classifieds/internal/report/domain"
)

// ReportRepository defines methods for report data access.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *domain.Report) error
	GetReport(ctx context.Context, id int64) (*domain.Report, error)
	// ApplyTransition stores t if the report is still in t.From and
	// appends an audit row, atomically. It reports false when nothing
	// matched.
	ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error)
	QueryReports(ctx context.Context, filter domain.ReportFilter, limit, offset int) ([]*domain.Report, int64, error)
	Stats(ctx context.Context, since time.Time) (*domain.ReportStats, error)
}
