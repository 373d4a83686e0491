package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/narwhalmedia/classifieds/internal/reference/domain"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/repository"
)

// Post counts only include approved posts, matching what the public feed
// shows under each category.
const (
	categoryProjection    = "categories.*, (SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id AND posts.status = 'approved') AS post_count"
	subCategoryProjection = "sub_categories.*, (SELECT COUNT(*) FROM posts WHERE posts.sub_category_id = sub_categories.id AND posts.status = 'approved') AS post_count"
)

var editableColumns = []string{"name", "name_local", "icon", "sort_order", "is_active"}

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ListStates lists active states.
func (r *GormRepository) ListStates(ctx context.Context) ([]domain.State, error) {
	rows, err := repository.List[State](ctx, r.db, "name", "is_active = ?", true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.State, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// ListDistricts lists the active districts of a state.
func (r *GormRepository) ListDistricts(ctx context.Context, stateID int64) ([]domain.District, error) {
	rows, err := repository.List[District](ctx, r.db, "name", "state_id = ? AND is_active = ?", stateID, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.District, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// ListTalukas lists the active talukas of a district.
func (r *GormRepository) ListTalukas(ctx context.Context, districtID int64) ([]domain.Taluka, error) {
	rows, err := repository.List[Taluka](ctx, r.db, "name", "district_id = ? AND is_active = ?", districtID, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Taluka, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// ListVillages lists the active villages of a taluka.
func (r *GormRepository) ListVillages(ctx context.Context, talukaID int64) ([]domain.Village, error) {
	rows, err := repository.List[Village](ctx, r.db, "name", "taluka_id = ? AND is_active = ?", talukaID, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Village, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// ListCategories lists categories with their approved post counts.
func (r *GormRepository) ListCategories(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	q := r.db.WithContext(ctx).Model(&Category{}).Select(categoryProjection)
	if activeOnly {
		q = q.Where("categories.is_active = ?", true)
	}
	var rows []*Category
	if err := q.Order("sort_order").Order("name").Find(&rows).Error; err != nil {
		return nil, repository.StoreError("list categories", err)
	}
	out := make([]*domain.Category, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// ListSubCategories lists the active subcategories of a category, or of
// every category when categoryID is zero.
func (r *GormRepository) ListSubCategories(ctx context.Context, categoryID int64) ([]*domain.SubCategory, error) {
	q := r.db.WithContext(ctx).Model(&SubCategory{}).
		Select(subCategoryProjection).
		Where("sub_categories.is_active = ?", true)
	if categoryID > 0 {
		q = q.Where("sub_categories.category_id = ?", categoryID)
	}
	var rows []*SubCategory
	if err := q.Order("category_id").Order("sort_order").Order("name").Find(&rows).Error; err != nil {
		return nil, repository.StoreError("list subcategories", err)
	}
	out := make([]*domain.SubCategory, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// QueryCategories returns one window of categories and the total match
// count from the same snapshot.
func (r *GormRepository) QueryCategories(
	ctx context.Context,
	filter domain.CategoryFilter,
	sort domain.CategorySort,
	limit, offset int,
) ([]*domain.Category, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.ActiveOnly {
			q = q.Where("categories.is_active = ?", true)
		}
		if kw := strings.ToLower(strings.TrimSpace(filter.Keyword)); kw != "" {
			like := "%" + kw + "%"
			q = q.Where("(LOWER(categories.name) LIKE ? OR LOWER(categories.name_local) LIKE ?)", like, like)
		}
		return q
	}

	var order []string
	switch sort {
	case domain.SortByName:
		order = []string{"name ASC", "id ASC"}
	case domain.SortByPostCount:
		order = []string{"post_count DESC", "id ASC"}
	default:
		order = []string{"sort_order ASC", "name ASC", "id ASC"}
	}

	rows, total, err := repository.FindPage[Category](ctx, r.db, repository.PageQuery{
		Scope:  scope,
		Select: categoryProjection,
		Order:  order,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Category, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, total, nil
}

// GetCategory retrieves a category by ID.
func (r *GormRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	row, err := repository.FindByID[Category](ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// CreateCategory inserts a category and writes back its ID.
func (r *GormRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	row := categoryFromDomain(c)
	if err := repository.Create(ctx, r.db, row); err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}

// UpdateCategory updates the editable fields of a category.
func (r *GormRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	row := categoryFromDomain(c)
	result := r.db.WithContext(ctx).Model(&Category{ID: c.ID}).Select(editableColumns).Updates(row)
	if result.Error != nil {
		if errors.IsDuplicateError(result.Error) {
			return errors.Conflict(fmt.Sprintf("category %q already exists", c.Name))
		}
		return repository.StoreError("update category", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound(fmt.Sprintf("category %d not found", c.ID))
	}
	return nil
}

// DeleteCategory removes a category that has no subcategories and no posts.
func (r *GormRepository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subs, posts int64
		if err := tx.Model(&SubCategory{}).Where("category_id = ?", id).Count(&subs).Error; err != nil {
			return err
		}
		if err := tx.Table("posts").Where("category_id = ?", id).Count(&posts).Error; err != nil {
			return err
		}
		if subs > 0 || posts > 0 {
			return errors.Conflict(fmt.Sprintf(
				"category %d still has %d subcategories and %d posts", id, subs, posts))
		}
		return repository.Delete[Category](ctx, tx, id)
	})
	return repository.StoreError("delete category", err)
}

// GetSubCategory retrieves a subcategory by ID.
func (r *GormRepository) GetSubCategory(ctx context.Context, id int64) (*domain.SubCategory, error) {
	row, err := repository.FindByID[SubCategory](ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// CreateSubCategory inserts a subcategory under an existing category.
func (r *GormRepository) CreateSubCategory(ctx context.Context, s *domain.SubCategory) error {
	if _, err := repository.FindByID[Category](ctx, r.db, s.CategoryID); err != nil {
		return err
	}
	row := subCategoryFromDomain(s)
	if err := repository.Create(ctx, r.db, row); err != nil {
		return err
	}
	s.ID = row.ID
	return nil
}

// UpdateSubCategory updates the editable fields of a subcategory.
func (r *GormRepository) UpdateSubCategory(ctx context.Context, s *domain.SubCategory) error {
	row := subCategoryFromDomain(s)
	result := r.db.WithContext(ctx).Model(&SubCategory{ID: s.ID}).Select(editableColumns).Updates(row)
	if result.Error != nil {
		return repository.StoreError("update subcategory", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound(fmt.Sprintf("subcategory %d not found", s.ID))
	}
	return nil
}

// DeleteSubCategory removes a subcategory that has no posts.
func (r *GormRepository) DeleteSubCategory(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Table("posts").Where("sub_category_id = ?", id).Count(&posts).Error; err != nil {
			return err
		}
		if posts > 0 {
			return errors.Conflict(fmt.Sprintf("subcategory %d still has %d posts", id, posts))
		}
		return repository.Delete[SubCategory](ctx, tx, id)
	})
	return repository.StoreError("delete subcategory", err)
}

// Stats counts categories and returns the top categories by approved posts.
func (r *GormRepository) Stats(ctx context.Context, top int) (*domain.CategoryStats, error) {
	stats := &domain.CategoryStats{}
	var rows []*Category

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total, err := repository.Count[Category](ctx, tx)
		if err != nil {
			return err
		}
		stats.Total = total
		if err := tx.Model(&Category{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
			return err
		}
		return tx.Model(&Category{}).
			Select(categoryProjection).
			Order("post_count DESC").Order("id ASC").
			Limit(top).
			Find(&rows).Error
	}, repository.SnapshotTxOptions(r.db))
	if err != nil {
		return nil, repository.StoreError("load category stats", err)
	}

	stats.Top = make([]domain.CategoryPostCount, len(rows))
	for i, row := range rows {
		stats.Top[i] = domain.CategoryPostCount{CategoryID: row.ID, Name: row.Name, PostCount: row.PostCount}
	}
	return stats, nil
}
