package service

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/narwhalmedia/classifieds/internal/admin/domain"
	"github.com/narwhalmedia/classifieds/internal/moderation"
	"github.com/narwhalmedia/classifieds/pkg/errors"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// BulkCoordinator applies one transition to many ids. Each id is its own
// store transaction; a failure on one id never stops the others.
type BulkCoordinator struct {
	concurrency int
	maxSize     int
	logger      interfaces.Logger
}

// NewBulkCoordinator creates a coordinator running at most concurrency
// transitions at a time over batches of at most maxSize ids.
func NewBulkCoordinator(concurrency, maxSize int, logger interfaces.Logger) *BulkCoordinator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BulkCoordinator{concurrency: concurrency, maxSize: maxSize, logger: logger}
}

type itemResult struct {
	id     int64
	result *moderation.Result
	err    error
}

// Validate rejects batches that cannot be processed at all.
func (c *BulkCoordinator) Validate(ids []int64) error {
	if len(ids) == 0 {
		return errors.BadRequest("no ids selected")
	}
	if c.maxSize > 0 && len(ids) > c.maxSize {
		return errors.BadRequest(fmt.Sprintf("at most %d ids can be moderated at once", c.maxSize))
	}
	return nil
}

// Apply runs t for every distinct id and collects per-id results in the
// order the ids were first given.
func (c *BulkCoordinator) Apply(ctx context.Context, t moderation.Transitioner, ids []int64, actorID int64) *domain.BulkOutcome {
	distinct := dedupe(ids)
	results := make([]itemResult, len(distinct))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, id := range distinct {
		g.Go(func() error {
			results[i].id = id
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			results[i].result, results[i].err = t.Transition(ctx, id, actorID)
			return nil
		})
	}
	_ = g.Wait()

	outcome := &domain.BulkOutcome{
		RequestedCount: len(ids),
		FailedIDs:      []int64{},
		Failures:       map[int64]string{},
	}
	var errs error
	for _, r := range results {
		switch {
		case r.err != nil:
			outcome.FailedIDs = append(outcome.FailedIDs, r.id)
			outcome.Failures[r.id] = errors.UserMessage(r.err)
			errs = multierr.Append(errs, fmt.Errorf("id %d: %w", r.id, r.err))
		case r.result.Changed():
			outcome.SucceededCount++
		default:
			outcome.SkippedCount++
		}
	}
	outcome.Message = fmt.Sprintf("%d of %d succeeded, %d skipped, %d failed",
		outcome.SucceededCount, len(distinct), outcome.SkippedCount, len(outcome.FailedIDs))

	if errs != nil {
		c.logger.WithContext(ctx).Warn("Bulk moderation finished with failures",
			interfaces.Int64("admin_id", actorID),
			interfaces.Int("failed", len(outcome.FailedIDs)),
			interfaces.Int("errors", len(multierr.Errors(errs))),
			interfaces.Error(errs))
	}
	return outcome
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
