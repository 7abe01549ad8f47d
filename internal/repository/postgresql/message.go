package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `
	m.id, m.sender_id, m.recipient_id, m.group_id, m.content,
	m.delivery_status, m.retry_count, m.last_retry_at, m.delivered_at, m.read_at, m.deleted_at,
	m.created_at, m.updated_at`

// inboxScope matches messages addressed to $1 directly or through a group
const inboxScope = `m.deleted_at IS NULL AND (m.recipient_id = $1 OR m.group_id IN (
	SELECT group_id FROM message_group_members WHERE employee_id = $1))`

type messageRepositoryImpl struct {
	db database.Querier
}

func NewMessageRepository(db database.Querier) message.MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func scanMessage(row pgx.Row, withSender bool) (message.Message, error) {
	var m message.Message
	dest := []any{
		&m.ID, &m.SenderID, &m.RecipientID, &m.GroupID, &m.Content,
		&m.Status, &m.RetryCount, &m.LastRetryAt, &m.DeliveredAt, &m.ReadAt, &m.DeletedAt,
		&m.CreatedAt, &m.UpdatedAt,
	}
	if withSender {
		dest = append(dest, &m.SenderName)
	}
	err := row.Scan(dest...)
	return m, err
}

func collectMessages(rows pgx.Rows, withSender bool) ([]message.Message, error) {
	defer rows.Close()

	var messages []message.Message
	for rows.Next() {
		m, err := scanMessage(rows, withSender)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", database.Classify(err))
	}
	return messages, nil
}

// Create implements message.MessageRepository.
func (r *messageRepositoryImpl) Create(ctx context.Context, msg message.Message) (message.Message, error) {
	q := GetQuerier(ctx, r.db)

	if msg.ID == "" {
		id, err := newID()
		if err != nil {
			return message.Message{}, err
		}
		msg.ID = id
	}
	if msg.Status == "" {
		msg.Status = message.StatusSent
	}

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, group_id, content, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, msg.ID, msg.SenderID, msg.RecipientID, msg.GroupID, msg.Content, msg.Status).
		Scan(&msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return message.Message{}, fmt.Errorf("failed to create message: %w", database.Classify(err))
	}
	return msg, nil
}

// GetByID implements message.MessageRepository.
func (r *messageRepositoryImpl) GetByID(ctx context.Context, id string) (message.Message, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + messageColumns + `
		FROM messages m
		WHERE m.id = $1 AND m.deleted_at IS NULL`

	m, err := scanMessage(q.QueryRow(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return message.Message{}, message.ErrMessageNotFound
		}
		return message.Message{}, fmt.Errorf("failed to get message: %w", database.Classify(err))
	}
	return m, nil
}

// UpdateDelivery implements message.MessageRepository.
func (r *messageRepositoryImpl) UpdateDelivery(ctx context.Context, msg *message.Message, from message.DeliveryStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE messages SET
			delivery_status = $1, retry_count = $2, last_retry_at = $3,
			delivered_at = $4, read_at = $5, updated_at = NOW()
		WHERE id = $6 AND delivery_status = $7
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		msg.Status, msg.RetryCount, msg.LastRetryAt, msg.DeliveredAt, msg.ReadAt, msg.ID, from,
	).Scan(&msg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return message.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to update message: %w", database.Classify(err))
	}
	return nil
}

// SoftDelete implements message.MessageRepository.
func (r *messageRepositoryImpl) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE messages SET deleted_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", database.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return message.ErrMessageNotFound
	}
	return nil
}

// ListInbox implements message.MessageRepository.
func (r *messageRepositoryImpl) ListInbox(ctx context.Context, employeeID string, filter message.InboxFilter) ([]message.Message, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := inboxScope
	args := []any{employeeID}
	if filter.Status != nil && *filter.Status != "" {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND m.delivery_status = $%d", len(args))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM messages m WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", database.Classify(err))
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`SELECT %s, e.full_name
		FROM messages m
		LEFT JOIN employees e ON e.id = m.sender_id
		WHERE %s
		ORDER BY m.created_at DESC
		LIMIT $%d OFFSET $%d`, messageColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query inbox: %w", database.Classify(err))
	}
	messages, err := collectMessages(rows, true)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkInboxDelivered implements message.MessageRepository.
func (r *messageRepositoryImpl) MarkInboxDelivered(ctx context.Context, employeeID string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE messages m SET delivery_status = 'delivered', delivered_at = $2, updated_at = NOW()
		WHERE ` + inboxScope + ` AND m.delivery_status IN ('sent', 'failed')`

	tag, err := q.Exec(ctx, query, employeeID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark inbox delivered: %w", database.Classify(err))
	}
	return tag.RowsAffected(), nil
}

// ListRetryable implements message.MessageRepository.
func (r *messageRepositoryImpl) ListRetryable(ctx context.Context, now time.Time, limit int) ([]message.Message, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + messageColumns + `
		FROM messages m
		WHERE m.delivery_status = 'failed'
		  AND m.retry_count < $1
		  AND (m.last_retry_at IS NULL OR m.last_retry_at < $2)
		  AND m.deleted_at IS NULL
		ORDER BY m.created_at ASC
		LIMIT $3`

	rows, err := q.Query(ctx, query, message.MaxRetries, now.Add(-message.RetryBackoff), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query retryable messages: %w", database.Classify(err))
	}
	return collectMessages(rows, false)
}

// PurgeDeletedBefore implements message.MessageRepository.
func (r *messageRepositoryImpl) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM messages WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted messages: %w", database.Classify(err))
	}
	return tag.RowsAffected(), nil
}
