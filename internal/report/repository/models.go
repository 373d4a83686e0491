package repository

import (
	"time"

	"github.com/narwhalmedia/classifieds/internal/report/domain"
)

// Report is the post_reports table row.
type Report struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	PostID      int64  `gorm:"not null;index"`
	ReportedBy  int64  `gorm:"not null;index"`
	Reason      string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy  *int64
	ReviewNotes string `gorm:"type:text"`
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName pins the table name.
func (Report) TableName() string { return "post_reports" }

func (r *Report) toDomain() *domain.Report {
	return &domain.Report{
		ID:          r.ID,
		PostID:      r.PostID,
		ReportedBy:  r.ReportedBy,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		ReviewedBy:  r.ReviewedBy,
		ReviewNotes: r.ReviewNotes,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromDomain(r *domain.Report) *Report {
	status := string(r.Status)
	if status == "" {
		status = string(domain.StatusPending)
	}
	return &Report{
		ID:          r.ID,
		PostID:      r.PostID,
		ReportedBy:  r.ReportedBy,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      status,
		ReviewedBy:  r.ReviewedBy,
		ReviewNotes: r.ReviewNotes,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
