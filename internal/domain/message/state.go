package message

import "time"

const (
	MaxRetries       = 3
	RetryBackoff     = 5 * time.Minute
	RetryBatchSize   = 50
	LogRetention     = 7 * 24 * time.Hour
	DeletedRetention = 30 * 24 * time.Hour
)

var transitions = map[DeliveryStatus][]DeliveryStatus{
	StatusSent:      {StatusDelivered, StatusRead, StatusFailed},
	StatusDelivered: {StatusRead},
	StatusFailed:    {StatusSent, StatusDelivered},
}

// CanTransition reports whether the delivery state machine allows from -> to
func CanTransition(from, to DeliveryStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the message to status and stamps the matching timestamp.
// Moving from failed back to sent is a retry and is bounded by MaxRetries.
func (m *Message) Transition(to DeliveryStatus, now time.Time) error {
	if !CanTransition(m.Status, to) {
		return ErrInvalidTransition
	}

	switch to {
	case StatusDelivered:
		m.DeliveredAt = &now
	case StatusRead:
		if m.DeliveredAt == nil {
			m.DeliveredAt = &now
		}
		m.ReadAt = &now
	case StatusSent:
		if !m.CanRetry() {
			return ErrRetryLimitReached
		}
		m.RetryCount++
		m.LastRetryAt = &now
	}
	m.Status = to
	return nil
}

// CanRetry reports whether a failed message still has retries left
func (m *Message) CanRetry() bool {
	return m.Status == StatusFailed && m.RetryCount < MaxRetries
}

// RetryDue reports whether a retryable message has waited out the backoff
func (m *Message) RetryDue(now time.Time) bool {
	if !m.CanRetry() || m.DeletedAt != nil {
		return false
	}
	return m.LastRetryAt == nil || m.LastRetryAt.Before(now.Add(-RetryBackoff))
}
