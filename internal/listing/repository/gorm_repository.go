package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/classifieds/internal/listing/constants"
	"github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

// GormRepository implements PostRepository using GORM.
type GormRepository struct {
	db *gorm.DB
}

var _ PostRepository = (*GormRepository)(nil)

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CreatePost inserts a new post and writes back its ID and timestamps.
func (r *GormRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	row := fromDomain(post)
	if err := repository.Create(ctx, r.db, row); err != nil {
		return err
	}
	post.ID = row.ID
	post.CreatedAt = row.CreatedAt
	post.UpdatedAt = row.UpdatedAt
	return nil
}

// GetPost retrieves a post by ID.
func (r *GormRepository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row, err := repository.FindByID[Post](ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// ApplyTransition performs a conditional update on the post's current
// state and records the audit row in the same transaction.
func (r *GormRepository) ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error) {
	updates := map[string]interface{}{
		"status":      string(t.To.Status),
		"is_featured": t.To.Featured,
		"updated_at":  time.Now().UTC(),
	}
	if t.Reason != nil {
		updates["rejection_reason"] = *t.Reason
	}

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Post{}).
			Where("id = ? AND status = ? AND is_featured = ?", id, string(t.From.Status), t.From.Featured).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		entry := &repository.ModerationLog{
			EntityType: string(moderation.EntityPost),
			EntityID:   id,
			Procedure:  constants.ModerationProcedure,
			Mode:       t.Op.Mode(),
			ActorID:    actorID,
			FromState:  t.From.String(),
			ToState:    t.To.String(),
		}
		if t.Reason != nil {
			entry.Reason = *t.Reason
		}
		return repository.RecordModeration(ctx, tx, entry)
	})
	if err != nil {
		return false, repository.StoreError("apply post transition", err)
	}
	return applied, nil
}

// QueryPosts returns one window of posts matching filter together with the
// total number of matches, both read from the same snapshot.
func (r *GormRepository) QueryPosts(
	ctx context.Context,
	filter domain.PostFilter,
	sort domain.PostSort,
	limit, offset int,
) ([]*domain.Post, int64, error) {
	rows, total, err := repository.FindPage[Post](ctx, r.db, repository.PageQuery{
		Scope:  postScope(filter),
		Order:  postOrder(sort),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	posts := make([]*domain.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toDomain()
	}
	return posts, total, nil
}

// FeaturedPosts returns the newest featured approved posts.
func (r *GormRepository) FeaturedPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	var rows []*Post
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_featured = ?", string(domain.StatusApproved), true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, repository.StoreError("list featured posts", err)
	}
	posts := make([]*domain.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toDomain()
	}
	return posts, nil
}

// Stats counts posts per status, plus the ones created since the given time.
func (r *GormRepository) Stats(ctx context.Context, since time.Time) (*domain.PostStats, error) {
	var byStatus []struct {
		Status string
		Count  int64
	}
	stats := &domain.PostStats{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Post{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&byStatus).Error; err != nil {
			return fmt.Errorf("failed to count posts by status: %w", err)
		}
		if err := tx.Model(&Post{}).Where("created_at >= ?", since).Count(&stats.Today).Error; err != nil {
			return fmt.Errorf("failed to count new posts: %w", err)
		}
		if err := tx.Model(&Post{}).
			Where("status = ? AND is_featured = ?", string(domain.StatusApproved), true).
			Count(&stats.Featured).Error; err != nil {
			return fmt.Errorf("failed to count featured posts: %w", err)
		}
		return nil
	}, repository.SnapshotTxOptions(r.db))
	if err != nil {
		return nil, repository.StoreError("load post stats", err)
	}

	for _, s := range byStatus {
		stats.Total += s.Count
		switch domain.Status(s.Status) {
		case domain.StatusPending:
			stats.Pending = s.Count
		case domain.StatusApproved:
			stats.Approved = s.Count
		case domain.StatusRejected:
			stats.Rejected = s.Count
		case domain.StatusDeleted:
			stats.Deleted = s.Count
		}
	}
	return stats, nil
}

func postScope(f domain.PostFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		}
		if f.CategoryID > 0 {
			q = q.Where("category_id = ?", f.CategoryID)
		}
		if f.SubCategoryID > 0 {
			q = q.Where("sub_category_id = ?", f.SubCategoryID)
		}
		if f.StateID > 0 {
			q = q.Where("state_id = ?", f.StateID)
		}
		if f.DistrictID > 0 {
			q = q.Where("district_id = ?", f.DistrictID)
		}
		if f.UserID > 0 {
			q = q.Where("user_id = ?", f.UserID)
		}
		if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
			like := "%" + kw + "%"
			q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		if f.FeaturedOnly {
			q = q.Where("is_featured = ?", true)
		}
		if f.UrgentOnly {
			q = q.Where("is_urgent = ?", true)
		}
		if f.MinPrice != nil {
			q = q.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("price <= ?", *f.MaxPrice)
		}
		return q
	}
}

// postOrder returns the ORDER BY terms for a sort. The id term keeps pages
// stable when the main key ties.
func postOrder(s domain.PostSort) []string {
	switch s {
	case domain.SortOldest:
		return []string{"created_at ASC", "id ASC"}
	case domain.SortPriceLow:
		return []string{"CASE WHEN price IS NULL THEN 1 ELSE 0 END", "price ASC", "id DESC"}
	case domain.SortPriceHigh:
		return []string{"CASE WHEN price IS NULL THEN 1 ELSE 0 END", "price DESC", "id DESC"}
	case domain.SortPopular:
		return []string{"view_count DESC", "id DESC"}
	case domain.SortMostLiked:
		return []string{"like_count DESC", "id DESC"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}
