package message

import (
	"context"
	"time"
)

type MessageRepository interface {
	Create(ctx context.Context, msg Message) (Message, error)

	// GetByID returns a message that is not soft-deleted, or ErrMessageNotFound.
	GetByID(ctx context.Context, id string) (Message, error)

	// UpdateDelivery persists status, retry counters and delivery timestamps
	// only while the stored status is still from. Otherwise it returns ErrConcurrentUpdate.
	UpdateDelivery(ctx context.Context, msg *Message, from DeliveryStatus) error

	SoftDelete(ctx context.Context, id string, at time.Time) error

	// ListInbox returns messages addressed to the employee directly or through a group.
	ListInbox(ctx context.Context, employeeID string, filter InboxFilter) ([]Message, int64, error)

	// MarkInboxDelivered moves the employee's sent and failed messages to delivered and returns how many changed.
	MarkInboxDelivered(ctx context.Context, employeeID string, at time.Time) (int64, error)

	// ListRetryable returns failed messages with retries left whose backoff elapsed before now, oldest first.
	ListRetryable(ctx context.Context, now time.Time, limit int) ([]Message, error)

	// PurgeDeletedBefore hard-deletes messages soft-deleted before cutoff.
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type DeliveryLogRepository interface {
	CreateBatch(ctx context.Context, logs []DeliveryLog) error

	// UpdateLatest sets the status of the newest log row for the (message, recipient) pair
	// unless that row is already read.
	UpdateLatest(ctx context.Context, messageID, recipientID string, status LogStatus, errMsg *string) error

	// DeleteTerminalBefore removes logs in a terminal state created before cutoff.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type GroupRepository interface {
	// GetByID returns the group with its member ids, or ErrGroupNotFound.
	GetByID(ctx context.Context, id string) (Group, error)
	IsMember(ctx context.Context, groupID, employeeID string) (bool, error)
}
