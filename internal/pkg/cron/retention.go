package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/retention"
)

// RetentionJobs deletes expired rows rule by rule
type RetentionJobs struct {
	repo     retention.Repository
	rules    []retention.Rule
	interval time.Duration
	now      func() time.Time
}

func NewRetentionJobs(repo retention.Repository, rules []retention.Rule, interval time.Duration) *RetentionJobs {
	return &RetentionJobs{
		repo:     repo,
		rules:    rules,
		interval: interval,
		now:      time.Now,
	}
}

// RetentionOverrides converts the YAML rule settings into rule overrides
func RetentionOverrides(cfg config.RetentionConfig) map[string]retention.Override {
	overrides := make(map[string]retention.Override, len(cfg.Rules))
	for name, rule := range cfg.Rules {
		o := retention.Override{Disabled: !rule.IsEnabled()}
		if rule.GraceRaw != "" {
			grace := rule.Grace
			o.Grace = &grace
		}
		overrides[name] = o
	}
	return overrides
}

func (j *RetentionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("retention_sweep", j.interval, j.Sweep)
}

// Sweep runs every rule in its own statement. A failing rule is logged
// and the remaining rules still run.
func (j *RetentionJobs) Sweep(ctx context.Context) error {
	j.Run(ctx, j.now())
	return nil
}

// Run applies each rule against now and reports per-rule outcomes
func (j *RetentionJobs) Run(ctx context.Context, now time.Time) []retention.Result {
	results := make([]retention.Result, 0, len(j.rules))
	for _, rule := range j.rules {
		if ctx.Err() != nil {
			break
		}

		deleted, err := j.repo.DeleteExpired(ctx, rule, rule.Cutoff(now))
		results = append(results, retention.Result{Rule: rule.Name, Deleted: deleted, Err: err})

		if err != nil {
			slog.Error("Cron: Retention rule failed", "rule", rule.Name, "table", rule.Table, "error", err)
			continue
		}
		if deleted > 0 {
			slog.Info("Cron: Retention rule applied", "rule", rule.Name, "deleted", deleted)
		}
	}
	return results
}
