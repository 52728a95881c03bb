package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

// Pruner enforces retention policies on run records.
type Pruner struct {
	storage   runstore.Storage
	config    config.RetentionConfig
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner. A nil logger uses slog.Default.
func NewPruner(storage runstore.Storage, cfg config.RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}

	pruner := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  logger.With("component", "runstore.retention"),
		now:     time.Now,
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes run records older than the retention period or exceeding
// the max record count.
//
// Pruning happens in two phases:
// 1. Age-based: delete records that started more than Days ago
// 2. Count-based: if more than MaxRecords remain, delete the oldest
//
// Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("run records pruned",
			"total_deleted", totalDeleted,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.Days)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.Days,
	)

	// EndTime is inclusive; records starting exactly at the cutoff go too.
	deleted, err := p.storage.Delete(ctx, &runstore.Query{EndTime: &cutoff})
	if err != nil {
		return 0, runstore.NewRetentionError(p.config.Days, err)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest records while the total count exceeds
// MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &runstore.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	excess := count - p.config.MaxRecords
	if excess <= 0 {
		p.logger.Debug("record count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	p.logger.Debug("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", excess,
	)

	var deleted int64
	for excess > 0 {
		batch := int(min(excess, runstore.MaxLimit))
		oldest, err := p.storage.Query(ctx, &runstore.Query{SortOrder: "asc", Limit: batch})
		if err != nil {
			return deleted, fmt.Errorf("failed to query records: %w", err)
		}
		if len(oldest) == 0 {
			break
		}

		ids := make([]string, len(oldest))
		for i, r := range oldest {
			ids[i] = r.ID
		}

		n, err := p.storage.Delete(ctx, &runstore.Query{IDs: ids})
		if err != nil {
			return deleted, fmt.Errorf("delete failed: %w", err)
		}
		deleted += n
		excess -= int64(len(oldest))
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
