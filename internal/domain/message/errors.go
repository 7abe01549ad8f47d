package message

import "errors"

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrGroupNotFound     = errors.New("message group not found")
	ErrGroupEmpty        = errors.New("message group has no members")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrMessageForbidden  = errors.New("not allowed to access this message")

	ErrInvalidTransition = errors.New("invalid message status transition")
	ErrConcurrentUpdate  = errors.New("message status was changed concurrently")
	ErrRetryLimitReached = errors.New("message retry limit reached")
	ErrDeliveryDropped   = errors.New("message could not be pushed to any live connection")
)
