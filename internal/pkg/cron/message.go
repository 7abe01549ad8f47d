package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
)

// MessageJobs contains message delivery cron jobs
type MessageJobs struct {
	messageService  message.MessageService
	retryInterval   time.Duration
	cleanupInterval time.Duration
}

// NewMessageJobs creates message cron jobs
func NewMessageJobs(messageService message.MessageService, retryInterval, cleanupInterval time.Duration) *MessageJobs {
	return &MessageJobs{
		messageService:  messageService,
		retryInterval:   retryInterval,
		cleanupInterval: cleanupInterval,
	}
}

// RegisterJobs registers the retry and cleanup sweeps
func (j *MessageJobs) RegisterJobs(scheduler *Scheduler) {
	if j.retryInterval > 0 {
		scheduler.AddJob("retry_failed_messages", j.retryInterval, j.RetryFailedMessages)
	}
	if j.cleanupInterval > 0 {
		scheduler.AddJob("cleanup_messages", j.cleanupInterval, j.CleanupMessages)
	}
}

// RetryFailedMessages re-sends failed messages whose backoff elapsed
func (j *MessageJobs) RetryFailedMessages(ctx context.Context) error {
	result, err := j.messageService.RetryFailed(ctx)
	if err != nil {
		return err
	}
	if result.Selected > 0 {
		slog.Info("Cron: Retried failed messages",
			"selected", result.Selected,
			"retried", result.Retried,
			"delivered", result.Delivered,
			"failed", result.Failed)
	}
	return nil
}

// CleanupMessages removes old delivery logs and purges long-deleted messages
func (j *MessageJobs) CleanupMessages(ctx context.Context) error {
	result, err := j.messageService.Cleanup(ctx)
	slog.Info("Cron: Cleaned up messages",
		"logs_deleted", result.LogsDeleted,
		"messages_deleted", result.MessagesDeleted)
	return err
}
