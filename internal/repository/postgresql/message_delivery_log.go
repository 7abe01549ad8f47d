package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
)

type deliveryLogRepositoryImpl struct {
	db database.Querier
}

func NewDeliveryLogRepository(db database.Querier) message.DeliveryLogRepository {
	return &deliveryLogRepositoryImpl{db: db}
}

// CreateBatch implements message.DeliveryLogRepository.
func (r *deliveryLogRepositoryImpl) CreateBatch(ctx context.Context, logs []message.DeliveryLog) error {
	if len(logs) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(logs))
	valueArgs := make([]any, 0, len(logs)*5)
	for i := range logs {
		if logs[i].ID == "" {
			id, err := newID()
			if err != nil {
				return err
			}
			logs[i].ID = id
		}
		if logs[i].Status == "" {
			logs[i].Status = message.LogPending
		}

		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, logs[i].ID, logs[i].MessageID, logs[i].RecipientID, logs[i].Status, logs[i].ErrorMessage)
	}

	query := `INSERT INTO message_delivery_logs (id, message_id, recipient_id, status, error_message) VALUES ` +
		strings.Join(valueStrings, ", ")

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to create delivery logs: %w", database.Classify(err))
	}
	return nil
}

// UpdateLatest implements message.DeliveryLogRepository.
func (r *deliveryLogRepositoryImpl) UpdateLatest(ctx context.Context, messageID, recipientID string, status message.LogStatus, errMsg *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE message_delivery_logs SET status = $3, error_message = $4, updated_at = NOW()
		WHERE id = (
			SELECT id FROM message_delivery_logs
			WHERE message_id = $1 AND recipient_id = $2
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) AND status <> 'read'
	`

	if _, err := q.Exec(ctx, query, messageID, recipientID, status, errMsg); err != nil {
		return fmt.Errorf("failed to update delivery log: %w", database.Classify(err))
	}
	return nil
}

// DeleteTerminalBefore implements message.DeliveryLogRepository.
func (r *deliveryLogRepositoryImpl) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	statuses := make([]string, 0, len(message.TerminalLogStatuses))
	for _, s := range message.TerminalLogStatuses {
		statuses = append(statuses, string(s))
	}

	tag, err := q.Exec(ctx, `DELETE FROM message_delivery_logs WHERE status = ANY($1) AND created_at < $2`, statuses, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete delivery logs: %w", database.Classify(err))
	}
	return tag.RowsAffected(), nil
}
