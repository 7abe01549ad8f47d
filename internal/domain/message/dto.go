package message

import (
	"strings"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
)

const MaxContentLength = 5000

type SendMessageRequest struct {
	RecipientID *string `json:"recipient_id,omitempty"`
	GroupID     *string `json:"group_id,omitempty"`
	Content     string  `json:"content"`
}

func (r *SendMessageRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Content) {
		errs = append(errs, validator.ValidationError{Field: "content", Message: "content is required"})
	} else if !validator.MaxLength(r.Content, MaxContentLength) {
		errs = append(errs, validator.ValidationError{Field: "content", Message: "content must not exceed 5000 characters"})
	}

	hasRecipient := !validator.IsEmptyPtr(r.RecipientID)
	hasGroup := !validator.IsEmptyPtr(r.GroupID)
	switch {
	case hasRecipient == hasGroup:
		errs = append(errs, validator.ValidationError{
			Field:   "recipient_id",
			Message: "exactly one of recipient_id or group_id must be provided",
		})
	case hasRecipient && !validator.IsValidUUID(*r.RecipientID):
		errs = append(errs, validator.ValidationError{Field: "recipient_id", Message: "recipient_id must be a valid UUID"})
	case hasGroup && !validator.IsValidUUID(*r.GroupID):
		errs = append(errs, validator.ValidationError{Field: "group_id", Message: "group_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type InboxFilter struct {
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

func (f *InboxFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	statuses := []string{string(StatusSent), string(StatusDelivered), string(StatusRead), string(StatusFailed)}
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, statuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: " + strings.Join(statuses, ", ")})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MessageResponse struct {
	ID          string  `json:"id"`
	SenderID    string  `json:"sender_id"`
	SenderName  *string `json:"sender_name,omitempty"`
	RecipientID *string `json:"recipient_id,omitempty"`
	GroupID     *string `json:"group_id,omitempty"`
	Content     string  `json:"content"`
	Status      string  `json:"delivery_status"`
	RetryCount  int     `json:"retry_count"`
	DeliveredAt *string `json:"delivered_at,omitempty"`
	ReadAt      *string `json:"read_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type ListMessageResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Messages   []MessageResponse `json:"messages"`
}

// RetryResult summarizes one retry sweep
type RetryResult struct {
	Selected  int
	Retried   int
	Delivered int
	Failed    int
}

// CleanupResult summarizes one cleanup sweep
type CleanupResult struct {
	LogsDeleted     int64
	MessagesDeleted int64
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
