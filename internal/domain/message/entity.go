package message

import "time"

type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusFailed    DeliveryStatus = "failed"
)

type LogStatus string

const (
	LogPending   LogStatus = "pending"
	LogSent      LogStatus = "sent"
	LogDelivered LogStatus = "delivered"
	LogRead      LogStatus = "read"
	LogFailed    LogStatus = "failed"
)

// TerminalLogStatuses are the log states eligible for cleanup
var TerminalLogStatuses = []LogStatus{LogDelivered, LogRead, LogFailed}

// Message is addressed either to one employee or to a group, never both
type Message struct {
	ID          string
	SenderID    string
	RecipientID *string
	GroupID     *string
	Content     string
	Status      DeliveryStatus
	RetryCount  int
	LastRetryAt *time.Time
	DeliveredAt *time.Time
	ReadAt      *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO
	SenderName *string
}

// DeliveryLog records one delivery attempt of a message to one recipient
type DeliveryLog struct {
	ID           string
	MessageID    string
	RecipientID  string
	Status       LogStatus
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Group struct {
	ID        string
	Name      string
	MemberIDs []string
}

// Recipients returns the employees a message is addressed to
func (m *Message) Recipients(group *Group) []string {
	if m.RecipientID != nil {
		return []string{*m.RecipientID}
	}
	if group != nil {
		return group.MemberIDs
	}
	return nil
}
