package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ModerationLog is one row of the moderation audit trail. Each row records
// which store procedure ran, in which mode, for which entity and by whom.
type ModerationLog struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	EntityType string `gorm:"type:varchar(20);not null;index:idx_moderation_logs_entity"`
	EntityID   int64  `gorm:"not null;index:idx_moderation_logs_entity"`
	Procedure  string `gorm:"type:varchar(64);not null"`
	Mode       string `gorm:"type:varchar(32);not null;index"`
	ActorID    int64  `gorm:"not null;index"`
	FromState  string `gorm:"type:varchar(32)"`
	ToState    string `gorm:"type:varchar(32)"`
	Reason     string `gorm:"type:text"`
	CreatedAt  time.Time
}

// TableName pins the table name.
func (ModerationLog) TableName() string { return "moderation_logs" }

// RecordModeration appends an audit row using tx, which is normally the
// transaction that performed the mutation.
func RecordModeration(ctx context.Context, tx *gorm.DB, entry *ModerationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record moderation: %w", err)
	}
	return nil
}

// ModerationHistory returns the audit rows of one entity, newest first.
func ModerationHistory(ctx context.Context, db *gorm.DB, entityType string, entityID int64, limit int) ([]*ModerationLog, error) {
	var rows []*ModerationLog
	err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, StoreError("load moderation history", err)
	}
	return rows, nil
}

// AuditLog reads the moderation audit trail.
type AuditLog struct {
	db *gorm.DB
}

// NewAuditLog creates an audit trail reader.
func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db}
}

// History returns the audit rows of one entity, newest first.
func (a *AuditLog) History(ctx context.Context, entityType string, entityID int64, limit int) ([]*ModerationLog, error) {
	return ModerationHistory(ctx, a.db, entityType, entityID, limit)
}
