package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
)

// EventMessage is the SSE event name used for message pushes
const EventMessage = "message"

// Deliverer pushes an event to a recipient's live connections. *sse.Hub satisfies it.
type Deliverer interface {
	Publish(recipientID string, event sse.Event) sse.PublishResult
}

type service struct {
	tx        postgresql.Transactor
	messages  message.MessageRepository
	logs      message.DeliveryLogRepository
	groups    message.GroupRepository
	employees employee.EmployeeRepository
	deliverer Deliverer

	now func() time.Time
}

func NewMessageService(
	tx postgresql.Transactor,
	messages message.MessageRepository,
	logs message.DeliveryLogRepository,
	groups message.GroupRepository,
	employees employee.EmployeeRepository,
	deliverer Deliverer,
) message.MessageService {
	return &service{
		tx:        tx,
		messages:  messages,
		logs:      logs,
		groups:    groups,
		employees: employees,
		deliverer: deliverer,
		now:       time.Now,
	}
}

func (s *service) employeeActor(ctx context.Context) (user.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.HasEmployee() {
		return user.Actor{}, user.ErrEmployeeProfileRequired
	}
	return actor, nil
}

// Send stores the message with one pending log row per recipient, then pushes it
func (s *service) Send(ctx context.Context, req message.SendMessageRequest) (message.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return message.MessageResponse{}, err
	}
	actor, err := s.employeeActor(ctx)
	if err != nil {
		return message.MessageResponse{}, err
	}

	msg := message.Message{
		SenderID:    actor.EmployeeID,
		RecipientID: req.RecipientID,
		GroupID:     req.GroupID,
		Content:     req.Content,
		Status:      message.StatusSent,
	}

	var group *message.Group
	if req.GroupID != nil {
		g, err := s.groups.GetByID(ctx, *req.GroupID)
		if err != nil {
			return message.MessageResponse{}, err
		}
		if len(g.MemberIDs) == 0 {
			return message.MessageResponse{}, message.ErrGroupEmpty
		}
		group = &g
	} else {
		exists, err := s.employees.ExistsActive(ctx, *req.RecipientID)
		if err != nil {
			return message.MessageResponse{}, fmt.Errorf("failed to check recipient: %w", err)
		}
		if !exists {
			return message.MessageResponse{}, message.ErrRecipientNotFound
		}
	}
	recipients := msg.Recipients(group)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.messages.Create(ctx, msg)
		if err != nil {
			return err
		}
		msg = created
		return s.logs.CreateBatch(ctx, pendingLogs(msg.ID, recipients))
	})
	if err != nil {
		return message.MessageResponse{}, fmt.Errorf("failed to send message: %w", err)
	}

	s.deliver(ctx, &msg, recipients)
	return s.toResponse(msg), nil
}

func pendingLogs(messageID string, recipients []string) []message.DeliveryLog {
	logs := make([]message.DeliveryLog, 0, len(recipients))
	for _, recipientID := range recipients {
		logs = append(logs, message.DeliveryLog{
			MessageID:   messageID,
			RecipientID: recipientID,
			Status:      message.LogPending,
		})
	}
	return logs
}

// deliver pushes msg to every recipient and records the outcome.
// Offline recipients leave the message sent until they fetch their inbox;
// a push dropped by every live connection marks it failed.
func (s *service) deliver(ctx context.Context, msg *message.Message, recipients []string) {
	var delivered, dropped, offline int
	payload := s.toResponse(*msg)

	for _, recipientID := range recipients {
		result := s.deliverer.Publish(recipientID, sse.Event{
			RecipientID: recipientID,
			Event:       EventMessage,
			Data:        payload,
		})

		status := message.LogSent
		var errMsg *string
		switch {
		case result.Delivered > 0:
			status = message.LogDelivered
			delivered++
		case result.Dropped():
			status = message.LogFailed
			e := message.ErrDeliveryDropped.Error()
			errMsg = &e
			dropped++
		default:
			offline++
		}

		if err := s.logs.UpdateLatest(ctx, msg.ID, recipientID, status, errMsg); err != nil {
			slog.Warn("Failed to update delivery log", "message_id", msg.ID, "recipient_id", recipientID, "error", err)
		}
	}

	var next message.DeliveryStatus
	switch {
	case delivered > 0:
		next = message.StatusDelivered
	case dropped > 0 && offline == 0:
		next = message.StatusFailed
	default:
		return
	}

	from := msg.Status
	if err := msg.Transition(next, s.now().UTC()); err != nil {
		slog.Warn("Skipping message status change", "message_id", msg.ID, "from", from, "to", next, "error", err)
		return
	}
	err := s.messages.UpdateDelivery(ctx, msg, from)
	switch {
	case errors.Is(err, message.ErrConcurrentUpdate):
		// A recipient read or fetched it while the push was in flight
		slog.Info("Message status changed during delivery, keeping stored status", "message_id", msg.ID, "to", next)
		if current, err := s.messages.GetByID(ctx, msg.ID); err == nil {
			*msg = current
		}
	case err != nil:
		slog.Error("Failed to update message delivery status", "message_id", msg.ID, "error", err)
	}
}

// ListInbox marks sent and failed messages delivered, since the recipient now has them, and returns a page
func (s *service) ListInbox(ctx context.Context, filter message.InboxFilter) (message.ListMessageResponse, error) {
	if err := filter.Validate(); err != nil {
		return message.ListMessageResponse{}, err
	}
	actor, err := s.employeeActor(ctx)
	if err != nil {
		return message.ListMessageResponse{}, err
	}

	if _, err := s.messages.MarkInboxDelivered(ctx, actor.EmployeeID, s.now().UTC()); err != nil {
		return message.ListMessageResponse{}, fmt.Errorf("failed to mark inbox delivered: %w", err)
	}

	messages, total, err := s.messages.ListInbox(ctx, actor.EmployeeID, filter)
	if err != nil {
		return message.ListMessageResponse{}, fmt.Errorf("failed to list inbox: %w", err)
	}

	responses := make([]message.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = s.toResponse(m)
	}

	return message.ListMessageResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Messages:   responses,
	}, nil
}

func (s *service) isRecipient(ctx context.Context, msg message.Message, employeeID string) (bool, error) {
	if msg.RecipientID != nil {
		return *msg.RecipientID == employeeID, nil
	}
	if msg.GroupID != nil {
		return s.groups.IsMember(ctx, *msg.GroupID, employeeID)
	}
	return false, nil
}

// MarkRead implements message.MessageService.
func (s *service) MarkRead(ctx context.Context, id string) (message.MessageResponse, error) {
	actor, err := s.employeeActor(ctx)
	if err != nil {
		return message.MessageResponse{}, err
	}

	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return message.MessageResponse{}, err
	}
	ok, err := s.isRecipient(ctx, msg, actor.EmployeeID)
	if err != nil {
		return message.MessageResponse{}, fmt.Errorf("failed to check recipient: %w", err)
	}
	if !ok {
		return message.MessageResponse{}, message.ErrMessageForbidden
	}

	// One reload covers a delivery that landed between the read and the update
	for attempt := 0; ; attempt++ {
		if msg.Status == message.StatusRead {
			return s.toResponse(msg), nil
		}

		from := msg.Status
		if err := msg.Transition(message.StatusRead, s.now().UTC()); err != nil {
			return message.MessageResponse{}, err
		}
		err = s.messages.UpdateDelivery(ctx, &msg, from)
		if err == nil {
			break
		}
		if !errors.Is(err, message.ErrConcurrentUpdate) || attempt > 0 {
			return message.MessageResponse{}, fmt.Errorf("failed to mark message read: %w", err)
		}
		if msg, err = s.messages.GetByID(ctx, id); err != nil {
			return message.MessageResponse{}, err
		}
	}
	if err := s.logs.UpdateLatest(ctx, msg.ID, actor.EmployeeID, message.LogRead, nil); err != nil {
		slog.Warn("Failed to update delivery log", "message_id", msg.ID, "recipient_id", actor.EmployeeID, "error", err)
	}

	return s.toResponse(msg), nil
}

// Delete soft-deletes a message for its sender or a recipient
func (s *service) Delete(ctx context.Context, id string) error {
	actor, err := s.employeeActor(ctx)
	if err != nil {
		return err
	}

	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != actor.EmployeeID {
		ok, err := s.isRecipient(ctx, msg, actor.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to check recipient: %w", err)
		}
		if !ok {
			return message.ErrMessageForbidden
		}
	}

	return s.messages.SoftDelete(ctx, id, s.now().UTC())
}

// RetryFailed re-sends failed messages whose backoff elapsed. Per-message
// errors are logged and the sweep continues.
func (s *service) RetryFailed(ctx context.Context) (message.RetryResult, error) {
	now := s.now().UTC()

	candidates, err := s.messages.ListRetryable(ctx, now, message.RetryBatchSize)
	if err != nil {
		return message.RetryResult{}, fmt.Errorf("failed to list retryable messages: %w", err)
	}

	result := message.RetryResult{Selected: len(candidates)}
	for i := range candidates {
		msg := candidates[i]
		if !msg.RetryDue(now) {
			continue
		}

		if err := s.retry(ctx, &msg, now); err != nil {
			slog.Warn("Failed to retry message", "message_id", msg.ID, "retry_count", msg.RetryCount, "error", err)
			continue
		}
		result.Retried++

		switch msg.Status {
		case message.StatusDelivered:
			result.Delivered++
		case message.StatusFailed:
			result.Failed++
		}
	}
	return result, nil
}

func (s *service) retry(ctx context.Context, msg *message.Message, now time.Time) error {
	var group *message.Group
	if msg.GroupID != nil {
		g, err := s.groups.GetByID(ctx, *msg.GroupID)
		if err != nil {
			return err
		}
		group = &g
	}
	recipients := msg.Recipients(group)
	if len(recipients) == 0 {
		return message.ErrGroupEmpty
	}

	from := msg.Status
	if err := msg.Transition(message.StatusSent, now); err != nil {
		return err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.messages.UpdateDelivery(ctx, msg, from); err != nil {
			return err
		}
		return s.logs.CreateBatch(ctx, pendingLogs(msg.ID, recipients))
	})
	if err != nil {
		return err
	}

	s.deliver(ctx, msg, recipients)
	return nil
}

// Cleanup removes terminal delivery logs and long-deleted messages. Both
// steps always run; their errors are joined.
func (s *service) Cleanup(ctx context.Context) (message.CleanupResult, error) {
	now := s.now().UTC()
	var result message.CleanupResult
	var errs []error

	logs, err := s.logs.DeleteTerminalBefore(ctx, now.Add(-message.LogRetention))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete delivery logs: %w", err))
	}
	result.LogsDeleted = logs

	purged, err := s.messages.PurgeDeletedBefore(ctx, now.Add(-message.DeletedRetention))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge deleted messages: %w", err))
	}
	result.MessagesDeleted = purged

	return result, errors.Join(errs...)
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// toResponse converts a Message entity to MessageResponse
func (s *service) toResponse(m message.Message) message.MessageResponse {
	return message.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		RecipientID: m.RecipientID,
		GroupID:     m.GroupID,
		Content:     m.Content,
		Status:      string(m.Status),
		RetryCount:  m.RetryCount,
		DeliveredAt: timePtrToString(m.DeliveredAt),
		ReadAt:      timePtrToString(m.ReadAt),
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}
