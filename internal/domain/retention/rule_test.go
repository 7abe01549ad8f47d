package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
		assert.Contains(t, r.Predicate, "$1", r.Name)
	}
	assert.Equal(t, []string{
		RuleExpiredAnnouncements, RuleOverdueAssignments, RuleExpiredRoutines, RuleStaleSessions, RuleFinishedShifts,
	}, names)
}

func TestRuleCutoff(t *testing.T) {
	now := time.Date(2024, time.July, 10, 8, 0, 0, 0, time.UTC)
	rules := DefaultRules()

	assert.Equal(t, now, rules[0].Cutoff(now))
	assert.Equal(t, time.Date(2024, time.July, 7, 8, 0, 0, 0, time.UTC), rules[4].Cutoff(now))
}

func TestRuleStatement(t *testing.T) {
	r := Rule{Table: "sessions", Predicate: "expires_at < $1"}
	assert.Equal(t, "DELETE FROM sessions WHERE expires_at < $1", r.Statement())
}

func TestApplyOverrides(t *testing.T) {
	day := 24 * time.Hour

	rules := ApplyOverrides(DefaultRules(), map[string]Override{
		RuleStaleSessions:  {Disabled: true},
		RuleFinishedShifts: {Grace: &day},
		"unknown_rule":     {Disabled: true},
	})

	assert.Len(t, rules, 4)
	for _, r := range rules {
		assert.NotEqual(t, RuleStaleSessions, r.Name)
		if r.Name == RuleFinishedShifts {
			assert.Equal(t, day, r.Grace)
		}
	}
	assert.Equal(t, 3*day, DefaultRules()[4].Grace, "defaults must not be mutated")
}
