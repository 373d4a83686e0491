package service

import (
	"context"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/narwhalmedia/classifieds/internal/admin/domain"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

const (
	// dashboardTopCategories is the length of the posts-per-category chart.
	dashboardTopCategories = 10
	dashboardSignupMonths  = 12
)

// Dashboard returns the admin snapshot. It is cached and dropped by every
// committed moderation step.
func (s *ModerationService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	key := cache.Dashboard()
	return cache.Fetch(ctx, s.cache, key, s.ttl.For(key), s.loadDashboard)
}

func (s *ModerationService) loadDashboard(ctx context.Context) (*domain.Dashboard, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	d := &domain.Dashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.posts.Stats(ctx, today)
		if err != nil {
			return err
		}
		d.Posts = *stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.users.Stats(ctx, today)
		if err != nil {
			return err
		}
		d.Users = *stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.categories.Stats(ctx, dashboardTopCategories)
		if err != nil {
			return err
		}
		d.Categories = *stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.reports.Stats(ctx, today)
		if err != nil {
			return err
		}
		d.Reports = *stats
		return nil
	})
	g.Go(func() error {
		signups, err := s.users.MonthlySignups(ctx, now, dashboardSignupMonths)
		if err != nil {
			return err
		}
		d.Signups = signups
		return nil
	})
	g.Go(func() error {
		featured, err := s.posts.Featured(ctx)
		if err != nil {
			return err
		}
		d.Featured = featured
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load dashboard", interfaces.Error(err))
		return nil, err
	}
	return d, nil
}

// SystemInfo describes the running process and the cache.
func (s *ModerationService) SystemInfo(ctx context.Context) *domain.SystemInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	hostname, _ := os.Hostname()

	database := "connected"
	if s.settings.Ping == nil {
		database = "unknown"
	} else if err := s.settings.Ping(ctx); err != nil {
		database = "unavailable"
	}

	now := s.now()
	return &domain.SystemInfo{
		Service:    s.settings.Service,
		Version:    s.settings.Version,
		Hostname:   hostname,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
		ServerTime: now,
		Uptime:     now.Sub(s.startedAt),
		Database:   database,
		Cache:      s.cache.Stats(),
	}
}
