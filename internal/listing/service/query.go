package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/narwhalmedia/classifieds/internal/listing/constants"
	"github.com/narwhalmedia/classifieds/internal/listing/domain"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// feedWindow is what a cached feed page holds. Items and total are cached
// together so a page never mixes counts and rows from different reads.
type feedWindow struct {
	items []*domain.Post
	total int64
}

// QueryPosts returns one page of posts. Public feed pages are cached per
// category; every other query reads the store.
func (s *PostService) QueryPosts(
	ctx context.Context,
	filter domain.PostFilter,
	sort domain.PostSort,
	page, size int,
) (*pagination.Page[*domain.Post], error) {
	return s.queryPosts(ctx, filter, sort, page, size, "")
}

// QueryPostsAfter continues a query from a next-page token.
func (s *PostService) QueryPostsAfter(
	ctx context.Context,
	filter domain.PostFilter,
	sort domain.PostSort,
	token string,
) (*pagination.Page[*domain.Post], error) {
	return s.queryPosts(ctx, filter, sort, 0, 0, token)
}

func (s *PostService) queryPosts(
	ctx context.Context,
	filter domain.PostFilter,
	sort domain.PostSort,
	page, size int,
	token string,
) (*pagination.Page[*domain.Post], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	fingerprint := filter.Fingerprint(sort)

	req, err := s.paging.Resolve(page, size, token, fingerprint)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context) (feedWindow, error) {
		items, total, err := s.repo.QueryPosts(ctx, filter, sort, req.Size, req.Offset())
		if err != nil {
			return feedWindow{}, err
		}
		return feedWindow{items: items, total: total}, nil
	}

	var window feedWindow
	if filter.PublicFeed() {
		key := feedKey(filter.CategoryID, fingerprint, req)
		window, err = cache.Fetch(ctx, s.cache, key, s.ttl.For(key), load)
	} else {
		window, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}

	return pagination.Finish(s.paging, pagination.NewPage(window.items, window.total, req), fingerprint)
}

// Featured returns the featured strip, newest first.
func (s *PostService) Featured(ctx context.Context) ([]*domain.Post, error) {
	key := cache.FeaturedPosts()
	return cache.Fetch(ctx, s.cache, key, s.ttl.For(key), func(ctx context.Context) ([]*domain.Post, error) {
		s.logger.Debug("Loading featured posts")
		return s.repo.FeaturedPosts(ctx, constants.FeaturedStripSize)
	})
}

// Stats returns the post counters for the dashboard. Today counts posts
// created at or after since.
func (s *PostService) Stats(ctx context.Context, since time.Time) (*domain.PostStats, error) {
	return s.repo.Stats(ctx, since)
}

// feedKey hashes the fingerprint because keywords may contain the key
// separator.
func feedKey(categoryID int64, fingerprint string, req pagination.Request) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return cache.Join(
		cache.Feed(categoryID, hex.EncodeToString(sum[:12])),
		strconv.Itoa(req.Number),
		strconv.Itoa(req.Size),
	)
}
