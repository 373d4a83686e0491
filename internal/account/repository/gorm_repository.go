package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/classifieds/internal/account/constants"
	"github.com/narwhalmedia/classifieds/internal/account/domain"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	pkgerrors "github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

// postsTable is read for profile counters. Posts belong to the listing
// context; only aggregate columns are touched here.
const postsTable = "posts"

// GormRepository implements UserRepository using GORM
type GormRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*GormRepository)(nil)

// NewGormRepository creates a new GORM repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateUser(ctx context.Context, user *domain.User) error {
	row := fromDomain(user)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict("username or email already exists")
		}
		return repository.StoreError("create user", err)
	}
	user.ID = row.ID
	user.Status = domain.Status(row.Status)
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *GormRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row, err := repository.FindByID[User](ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *GormRepository) ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&User{}).
			Where("id = ? AND status = ?", id, string(t.From)).
			Updates(map[string]interface{}{
				"status":     string(t.To),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true
		return repository.RecordModeration(ctx, tx, &repository.ModerationLog{
			EntityType: string(moderation.EntityUser),
			EntityID:   id,
			Procedure:  constants.ModerationProcedure,
			Mode:       t.Op.Mode(),
			ActorID:    actorID,
			FromState:  string(t.From),
			ToState:    string(t.To),
		})
	})
	if err != nil {
		return false, repository.StoreError("apply user transition", err)
	}
	return applied, nil
}

func (r *GormRepository) QueryUsers(
	ctx context.Context,
	filter domain.UserFilter,
	sort domain.UserSort,
	limit, offset int,
) ([]*domain.User, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if kw := strings.ToLower(strings.TrimSpace(filter.Keyword)); kw != "" {
			like := "%" + kw + "%"
			q = q.Where("(LOWER(user_name) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR mobile LIKE ?)",
				like, like, like, like, like)
		}
		return q
	}
	order := []string{"created_at DESC", "id DESC"}
	if sort == domain.SortName {
		order = []string{"first_name ASC", "last_name ASC", "user_name ASC", "id ASC"}
	}

	rows, total, err := repository.FindPage[User](ctx, r.db, repository.PageQuery{
		Scope:  scope,
		Order:  order,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	users := make([]*domain.User, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain()
	}
	return users, total, nil
}

// LoadProfile reads the account and its post counters in one snapshot.
func (r *GormRepository) LoadProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	var (
		row    User
		counts struct {
			Total    int64
			Approved int64
			Pending  int64
			Views    int64
			Likes    int64
		}
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Table(postsTable).
			Select(`COUNT(*) AS total,
				COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
				COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
				COALESCE(SUM(view_count), 0) AS views,
				COALESCE(SUM(like_count), 0) AS likes`).
			Where("user_id = ? AND status <> ?", id, "deleted").
			Scan(&counts).Error
	}, repository.SnapshotTxOptions(r.db))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(fmt.Sprintf("user %d not found", id))
		}
		return nil, repository.StoreError("load user profile", err)
	}

	return &domain.Profile{
		User:          *row.toDomain(),
		TotalPosts:    counts.Total,
		ApprovedPosts: counts.Approved,
		PendingPosts:  counts.Pending,
		TotalViews:    counts.Views,
		TotalLikes:    counts.Likes,
	}, nil
}

func (r *GormRepository) Stats(ctx context.Context, since time.Time) (*domain.UserStats, error) {
	var byStatus []struct {
		Status string
		Count  int64
	}
	stats := &domain.UserStats{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&byStatus).Error; err != nil {
			return fmt.Errorf("failed to count users by status: %w", err)
		}
		return tx.Model(&User{}).Where("created_at >= ?", since).Count(&stats.Today).Error
	}, repository.SnapshotTxOptions(r.db))
	if err != nil {
		return nil, repository.StoreError("load user stats", err)
	}

	for _, s := range byStatus {
		stats.Total += s.Count
		switch domain.Status(s.Status) {
		case domain.StatusActive:
			stats.Active = s.Count
		case domain.StatusInactive:
			stats.Inactive = s.Count
		case domain.StatusBanned:
			stats.Banned = s.Count
		}
	}
	return stats, nil
}

func (r *GormRepository) MonthlySignups(ctx context.Context, from time.Time, months int) ([]domain.MonthlyCount, error) {
	from = from.UTC()
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	counts := make([]domain.MonthlyCount, months)

	// One range count per month keeps the query portable across dialects.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range counts {
			lo := start.AddDate(0, i, 0)
			hi := lo.AddDate(0, 1, 0)
			counts[i].Month = lo.Format("2006-01")
			if err := tx.Model(&User{}).
				Where("created_at >= ? AND created_at < ?", lo, hi).
				Count(&counts[i].Count).Error; err != nil {
				return fmt.Errorf("failed to count signups for %s: %w", counts[i].Month, err)
			}
		}
		return nil
	}, repository.SnapshotTxOptions(r.db))
	if err != nil {
		return nil, repository.StoreError("load monthly signups", err)
	}
	return counts, nil
}
