package retention

import (
	"context"
	"time"
)

// Rule names
const (
	RuleExpiredAnnouncements = "expired_announcements"
	RuleOverdueAssignments   = "overdue_assignments"
	RuleExpiredRoutines      = "expired_routines"
	RuleStaleSessions        = "stale_sessions"
	RuleFinishedShifts       = "finished_shifts"
)

// Rule deletes the rows of one table matching a fixed predicate.
// Predicate must reference the cutoff as $1 and nothing else.
type Rule struct {
	Name      string
	Table     string
	Predicate string
	// Grace is how long a row is kept after it qualifies
	Grace time.Duration
}

// Cutoff returns the instant rows must predate to be deleted
func (r Rule) Cutoff(now time.Time) time.Time {
	return now.Add(-r.Grace)
}

// Statement renders the DELETE for the rule
func (r Rule) Statement() string {
	return "DELETE FROM " + r.Table + " WHERE " + r.Predicate
}

// DefaultRules returns the built-in rule set in sweep order
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleExpiredAnnouncements, Table: "announcements", Predicate: "expires_at < $1"},
		{Name: RuleOverdueAssignments, Table: "assignments", Predicate: "due_date < $1 AND status <> 'completed'"},
		{Name: RuleExpiredRoutines, Table: "routines", Predicate: "expires_at < $1"},
		{Name: RuleStaleSessions, Table: "sessions", Predicate: "expires_at < $1"},
		{Name: RuleFinishedShifts, Table: "shifts", Predicate: "status IN ('completed', 'cancelled') AND end_time < $1", Grace: 3 * 24 * time.Hour},
	}
}

// Override adjusts one rule from configuration
type Override struct {
	Disabled bool
	Grace    *time.Duration
}

// ApplyOverrides returns rules with disabled ones removed and grace periods replaced
func ApplyOverrides(rules []Rule, overrides map[string]Override) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		o, ok := overrides[rule.Name]
		if ok && o.Disabled {
			continue
		}
		if ok && o.Grace != nil {
			rule.Grace = *o.Grace
		}
		out = append(out, rule)
	}
	return out
}

// Result is the outcome of one rule in a sweep
type Result struct {
	Rule    string
	Deleted int64
	Err     error
}

type Repository interface {
	// DeleteExpired runs the rule's DELETE with cutoff and returns the rows removed.
	DeleteExpired(ctx context.Context, rule Rule, cutoff time.Time) (int64, error)
}
