package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/retention"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
)

type retentionRepositoryImpl struct {
	db database.Querier
}

func NewRetentionRepository(db database.Querier) retention.Repository {
	return &retentionRepositoryImpl{db: db}
}

// DeleteExpired implements retention.Repository.
func (r *retentionRepositoryImpl) DeleteExpired(ctx context.Context, rule retention.Rule, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, rule.Statement(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention rule %s: %w", rule.Name, database.Classify(err))
	}
	return tag.RowsAffected(), nil
}
