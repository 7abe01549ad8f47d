package message

import "context"

type MessageService interface {
	Send(ctx context.Context, req SendMessageRequest) (MessageResponse, error)
	ListInbox(ctx context.Context, filter InboxFilter) (ListMessageResponse, error)
	MarkRead(ctx context.Context, id string) (MessageResponse, error)
	Delete(ctx context.Context, id string) error

	// RetryFailed and Cleanup are driven by the background scheduler.
	RetryFailed(ctx context.Context) (RetryResult, error)
	Cleanup(ctx context.Context) (CleanupResult, error)
}
