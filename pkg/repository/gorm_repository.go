package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pkgerrors "github.com/narwhalmedia/classifieds/pkg/errors"
	"gorm.io/gorm"
)

// Create creates a new entity in the database.
func Create[T any](ctx context.Context, db *gorm.DB, entity *T) error {
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict("entity already exists")
		}
		return StoreError("create entity", err)
	}
	return nil
}

// FindByID finds an entity by its ID. It preloads specified associations.
func FindByID[T any](ctx context.Context, db *gorm.DB, id int64, preloads ...string) (*T, error) {
	var entity T
	query := db.WithContext(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(fmt.Sprintf("entity %d not found", id))
		}
		return nil, StoreError("find entity", err)
	}
	return &entity, nil
}

// Delete removes an entity from the database by its ID.
func Delete[T any](ctx context.Context, db *gorm.DB, id int64) error {
	var entity T
	result := db.WithContext(ctx).Delete(&entity, "id = ?", id)
	if result.Error != nil {
		return StoreError("delete entity", result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.NotFound(fmt.Sprintf("entity %d not found for deletion", id))
	}
	return nil
}

// List returns every entity matching query, ordered by order.
func List[T any](ctx context.Context, db *gorm.DB, order string, query string, args ...interface{}) ([]T, error) {
	var entities []T
	q := db.WithContext(ctx).Where(query, args...)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, StoreError("list entities", err)
	}
	return entities, nil
}

// Count returns the total number of entities.
func Count[T any](ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	var entity T
	if err := db.WithContext(ctx).Model(&entity).Count(&count).Error; err != nil {
		return 0, StoreError("count entities", err)
	}
	return count, nil
}

// PageQuery describes one window of a filtered list.
type PageQuery struct {
	// Scope applies the filter. It is used by both the count and the item query.
	Scope func(*gorm.DB) *gorm.DB
	// Select is an optional projection for the item query only.
	Select string
	Order  []string
	Limit  int
	Offset int
}

// FindPage counts the rows matched by q and loads one window of them inside
// a single read-only transaction, so the total and the items see the same
// snapshot.
func FindPage[T any](ctx context.Context, db *gorm.DB, q PageQuery) ([]*T, int64, error) {
	var (
		items []*T
		total int64
	)
	scope := q.Scope
	if scope == nil {
		scope = func(tx *gorm.DB) *gorm.DB { return tx }
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model T
		if err := scope(tx.Model(&model)).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		if int64(q.Offset) >= total {
			items = []*T{}
			return nil
		}
		query := scope(tx.Model(&model))
		if q.Select != "" {
			query = query.Select(q.Select)
		}
		for _, o := range q.Order {
			query = query.Order(o)
		}
		if err := query.Limit(q.Limit).Offset(q.Offset).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load rows: %w", err)
		}
		return nil
	}, SnapshotTxOptions(db))
	if err != nil {
		return nil, 0, StoreError("query page", err)
	}
	return items, total, nil
}

// SnapshotTxOptions returns options for a read-only transaction that sees a
// single snapshot. SQLite transactions are serializable already and do not
// accept isolation levels, so nil is returned for it.
func SnapshotTxOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

// StoreError converts a driver error into the application error taxonomy.
// Application errors pass through unchanged.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound("entity not found")
	}
	return pkgerrors.StoreUnavailable(fmt.Sprintf("failed to %s", op), err)
}
