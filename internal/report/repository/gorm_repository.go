package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/internal/report/constants"
	"github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

// GormRepository implements ReportRepository using GORM
type GormRepository struct {
	db *gorm.DB
}

var _ ReportRepository = (*GormRepository)(nil)

// NewGormRepository creates a new GORM repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateReport(ctx context.Context, report *domain.Report) error {
	row := fromDomain(report)
	if err := repository.Create(ctx, r.db, row); err != nil {
		return err
	}
	report.ID = row.ID
	report.Status = domain.Status(row.Status)
	report.CreatedAt = row.CreatedAt
	report.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *GormRepository) GetReport(ctx context.Context, id int64) (*domain.Report, error) {
	row, err := repository.FindByID[Report](ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *GormRepository) ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.Model(&Report{}).
			Where("id = ? AND status = ?", id, string(t.From)).
			Updates(map[string]interface{}{
				"status":       string(t.To),
				"reviewed_by":  actorID,
				"review_notes": t.Notes,
				"reviewed_at":  now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update report: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true
		return repository.RecordModeration(ctx, tx, &repository.ModerationLog{
			EntityType: string(moderation.EntityReport),
			EntityID:   id,
			Procedure:  constants.ModerationProcedure,
			Mode:       t.Op.Mode(),
			ActorID:    actorID,
			FromState:  string(t.From),
			ToState:    string(t.To),
			Reason:     t.Notes,
		})
	})
	if err != nil {
		return false, repository.StoreError("apply report transition", err)
	}
	return applied, nil
}

// QueryReports lists reports oldest first, so the queue is worked in
// arrival order.
func (r *GormRepository) QueryReports(
	ctx context.Context,
	filter domain.ReportFilter,
	limit, offset int,
) ([]*domain.Report, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.PostID > 0 {
			q = q.Where("post_id = ?", filter.PostID)
		}
		return q
	}

	rows, total, err := repository.FindPage[Report](ctx, r.db, repository.PageQuery{
		Scope:  scope,
		Order:  []string{"created_at ASC", "id ASC"},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	reports := make([]*domain.Report, len(rows))
	for i, row := range rows {
		reports[i] = row.toDomain()
	}
	return reports, total, nil
}

func (r *GormRepository) Stats(ctx context.Context, since time.Time) (*domain.ReportStats, error) {
	var byStatus []struct {
		Status string
		Count  int64
	}
	stats := &domain.ReportStats{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Report{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&byStatus).Error; err != nil {
			return fmt.Errorf("failed to count reports by status: %w", err)
		}
		return tx.Model(&Report{}).Where("created_at >= ?", since).Count(&stats.Today).Error
	}, repository.SnapshotTxOptions(r.db))
	if err != nil {
		return nil, repository.StoreError("load report stats", err)
	}

	for _, s := range byStatus {
		switch domain.Status(s.Status) {
		case domain.StatusPending:
			stats.Pending = s.Count
		case domain.StatusReviewed:
			stats.Reviewed = s.Count
		case domain.StatusResolved:
			stats.Resolved = s.Count
		}
	}
	return stats, nil
}
