package service

import (
	"context"
	"time"

	accountdomain "github.com/narwhalmedia/classifieds/internal/account/domain"
	accountservice "github.com/narwhalmedia/classifieds/internal/account/service"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	listingservice "github.com/narwhalmedia/classifieds/internal/listing/service"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	referencedomain "github.com/narwhalmedia/classifieds/internal/reference/domain"
	referenceservice "github.com/narwhalmedia/classifieds/internal/reference/service"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	reportservice "github.com/narwhalmedia/classifieds/internal/report/service"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// PostModerator is the part of the post service the admin facade uses.
type PostModerator interface {
	Apply(ctx context.Context, id int64, op listingdomain.PostOp, actorID int64) (*moderation.Result, error)
	Transitioner(op listingdomain.PostOp) moderation.Transitioner
	GetPost(ctx context.Context, id int64) (*listingdomain.Post, error)
	QueryPosts(
		ctx context.Context,
		filter listingdomain.PostFilter,
		sort listingdomain.PostSort,
		page, size int,
	) (*pagination.Page[*listingdomain.Post], error)
	Featured(ctx context.Context) ([]*listingdomain.Post, error)
	Stats(ctx context.Context, since time.Time) (*listingdomain.PostStats, error)
}

// UserModerator is the part of the user service the admin facade uses.
type UserModerator interface {
	Apply(ctx context.Context, id int64, op accountdomain.UserOp, actorID int64) (*moderation.Result, error)
	Transitioner(op accountdomain.UserOp) moderation.Transitioner
	QueryUsers(
		ctx context.Context,
		filter accountdomain.UserFilter,
		sort accountdomain.UserSort,
		page, size int,
	) (*pagination.Page[*accountdomain.User], error)
	Stats(ctx context.Context, since time.Time) (*accountdomain.UserStats, error)
	MonthlySignups(ctx context.Context, now time.Time, months int) ([]accountdomain.MonthlyCount, error)
}

// ReportQueue is the part of the report service the admin facade uses.
type ReportQueue interface {
	Apply(ctx context.Context, id int64, op reportdomain.ReportOp, actorID int64) (*moderation.Result, error)
	Transitioner(op reportdomain.ReportOp) moderation.Transitioner
	QueryReports(
		ctx context.Context,
		filter reportdomain.ReportFilter,
		page, size int,
	) (*pagination.Page[*reportdomain.Report], error)
	PendingReports(ctx context.Context, page, size int) (*pagination.Page[*reportdomain.Report], error)
	Stats(ctx context.Context, since time.Time) (*reportdomain.ReportStats, error)
}

// CategoryCatalog is the part of the reference service the admin facade uses.
type CategoryCatalog interface {
	QueryCategories(
		ctx context.Context,
		filter referencedomain.CategoryFilter,
		sort referencedomain.CategorySort,
		page, size int,
	) (*pagination.Page[*referencedomain.Category], error)
	Stats(ctx context.Context, top int) (*referencedomain.CategoryStats, error)
}

var (
	_ PostModerator   = (*listingservice.PostService)(nil)
	_ UserModerator   = (*accountservice.UserService)(nil)
	_ CategoryCatalog = (*referenceservice.ReferenceService)(nil)
	_ ReportQueue     = (*reportservice.ReportService)(nil)
)
