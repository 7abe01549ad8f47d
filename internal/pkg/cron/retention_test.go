package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/retention"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRetentionRepo struct {
	cutoffs map[string]time.Time
	failOn  string
}

func (r *recordingRetentionRepo) DeleteExpired(_ context.Context, rule retention.Rule, cutoff time.Time) (int64, error) {
	r.cutoffs[rule.Name] = cutoff
	if rule.Name == r.failOn {
		return 0, errors.New("relation does not exist")
	}
	return 1, nil
}

func TestRetentionRun_OneFailingRuleDoesNotBlockOthers(t *testing.T) {
	repo := &recordingRetentionRepo{cutoffs: map[string]time.Time{}, failOn: retention.RuleOverdueAssignments}
	jobs := NewRetentionJobs(repo, retention.DefaultRules(), time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	results := jobs.Run(context.Background(), now)
	require.Len(t, results, 5)
	for _, r := range results {
		if r.Rule == retention.RuleOverdueAssignments {
			assert.Error(t, r.Err)
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, int64(1), r.Deleted)
	}

	assert.Equal(t, now, repo.cutoffs[retention.RuleStaleSessions])
	assert.Equal(t, now.Add(-72*time.Hour), repo.cutoffs[retention.RuleFinishedShifts])
}

func TestRetentionOverrides(t *testing.T) {
	off := false
	cfg := config.RetentionConfig{Rules: map[string]config.RetentionRuleConfig{
		retention.RuleExpiredRoutines: {Enabled: &off},
		retention.RuleFinishedShifts:  {GraceRaw: "24h", Grace: 24 * time.Hour},
	}}

	rules := retention.ApplyOverrides(retention.DefaultRules(), RetentionOverrides(cfg))
	require.Len(t, rules, 4)

	repo := &recordingRetentionRepo{cutoffs: map[string]time.Time{}}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	NewRetentionJobs(repo, rules, time.Hour).Run(context.Background(), now)

	assert.NotContains(t, repo.cutoffs, retention.RuleExpiredRoutines)
	assert.Equal(t, now.Add(-24*time.Hour), repo.cutoffs[retention.RuleFinishedShifts])
}
