package repository

import (
	"context"
	"time"

	"github.com/narwhalmedia/classifieds/internal/account/domain"
)

// UserRepository defines methods for account data access.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// ApplyTransition stores t if the account is still in t.From and
	// appends an audit row, atomically. It reports false when nothing
	// matched.
	ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error)
	QueryUsers(ctx context.Context, filter domain.UserFilter, sort domain.UserSort, limit, offset int) ([]*domain.User, int64, error)
	LoadProfile(ctx context.Context, id int64) (*domain.Profile, error)
	Stats(ctx context.Context, since time.Time) (*domain.UserStats, error)
	// MonthlySignups counts accounts created in each of the months calendar
	// months starting with the one that contains from (UTC).
	MonthlySignups(ctx context.Context, from time.Time, months int) ([]domain.MonthlyCount, error)
}
