package repository

import (
	"context"
	"time"

	"github.com/narwhalmedia/classifieds/internal/listing/domain"
)

// PostRepository defines the interface for post data access.
type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	// ApplyTransition stores t if the post is still in t.From and appends
	// an audit row, atomically. It reports false when the post moved on
	// in the meantime and nothing was written.
	ApplyTransition(ctx context.Context, id int64, t domain.Transition, actorID int64) (bool, error)
	QueryPosts(ctx context.Context, filter domain.PostFilter, sort domain.PostSort, limit, offset int) ([]*domain.Post, int64, error)
	FeaturedPosts(ctx context.Context, limit int) ([]*domain.Post, error)
	Stats(ctx context.Context, since time.Time) (*domain.PostStats, error)
}
