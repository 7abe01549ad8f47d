package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type groupRepositoryImpl struct {
	db database.Querier
}

func NewGroupRepository(db database.Querier) message.GroupRepository {
	return &groupRepositoryImpl{db: db}
}

// GetByID implements message.GroupRepository.
func (r *groupRepositoryImpl) GetByID(ctx context.Context, id string) (message.Group, error) {
	q := GetQuerier(ctx, r.db)

	var group message.Group
	err := q.QueryRow(ctx, `SELECT id, name FROM message_groups WHERE id = $1`, id).Scan(&group.ID, &group.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return message.Group{}, message.ErrGroupNotFound
		}
		return message.Group{}, fmt.Errorf("failed to get message group: %w", database.Classify(err))
	}

	rows, err := q.Query(ctx, `
		SELECT gm.employee_id
		FROM message_group_members gm
		JOIN employees e ON e.id = gm.employee_id
		WHERE gm.group_id = $1 AND e.is_active
		ORDER BY gm.employee_id
	`, id)
	if err != nil {
		return message.Group{}, fmt.Errorf("failed to query group members: %w", database.Classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return message.Group{}, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.MemberIDs = append(group.MemberIDs, memberID)
	}
	if err := rows.Err(); err != nil {
		return message.Group{}, fmt.Errorf("failed to iterate group members: %w", database.Classify(err))
	}

	return group, nil
}

// IsMember implements message.GroupRepository.
func (r *groupRepositoryImpl) IsMember(ctx context.Context, groupID, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var found bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM message_group_members WHERE group_id = $1 AND employee_id = $2)`,
		groupID, employeeID,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", database.Classify(err))
	}
	return found, nil
}
