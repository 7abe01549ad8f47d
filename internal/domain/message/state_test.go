package message

import (
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DeliveryStatus
		want     bool
	}{
		{StatusSent, StatusDelivered, true},
		{StatusSent, StatusRead, true},
		{StatusSent, StatusFailed, true},
		{StatusDelivered, StatusRead, true},
		{StatusFailed, StatusSent, true},
		{StatusDelivered, StatusSent, false},
		{StatusDelivered, StatusFailed, false},
		{StatusRead, StatusDelivered, false},
		{StatusRead, StatusSent, false},
		{StatusFailed, StatusDelivered, true},
		{StatusFailed, StatusRead, false},
		{StatusSent, StatusSent, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransitionStampsTimestamps(t *testing.T) {
	m := Message{Status: StatusSent}
	require.NoError(t, m.Transition(StatusDelivered, now))
	assert.Equal(t, now, *m.DeliveredAt)

	later := now.Add(time.Minute)
	require.NoError(t, m.Transition(StatusRead, later))
	assert.Equal(t, now, *m.DeliveredAt)
	assert.Equal(t, later, *m.ReadAt)
}

func TestTransitionRejectsInvalid(t *testing.T) {
	m := Message{Status: StatusRead}
	assert.ErrorIs(t, m.Transition(StatusSent, now), ErrInvalidTransition)
	assert.Equal(t, StatusRead, m.Status)
}

func TestRetryIsBounded(t *testing.T) {
	m := Message{Status: StatusFailed}

	for i := 1; i <= MaxRetries; i++ {
		require.NoError(t, m.Transition(StatusSent, now))
		assert.Equal(t, i, m.RetryCount)
		require.NoError(t, m.Transition(StatusFailed, now))
	}

	assert.False(t, m.CanRetry())
	assert.ErrorIs(t, m.Transition(StatusSent, now), ErrRetryLimitReached)
	assert.Equal(t, StatusFailed, m.Status)
	assert.Equal(t, MaxRetries, m.RetryCount)
}

func TestRetryDue(t *testing.T) {
	recent := now.Add(-time.Minute)
	old := now.Add(-6 * time.Minute)
	deleted := now.Add(-time.Hour)

	assert.True(t, (&Message{Status: StatusFailed}).RetryDue(now))
	assert.True(t, (&Message{Status: StatusFailed, RetryCount: 2, LastRetryAt: &old}).RetryDue(now))
	assert.False(t, (&Message{Status: StatusFailed, RetryCount: 1, LastRetryAt: &recent}).RetryDue(now))
	assert.False(t, (&Message{Status: StatusFailed, RetryCount: 3}).RetryDue(now))
	assert.False(t, (&Message{Status: StatusSent}).RetryDue(now))
	assert.False(t, (&Message{Status: StatusFailed, DeletedAt: &deleted}).RetryDue(now))
}

func TestSendMessageRequestValidate(t *testing.T) {
	id := "0190a5f2-7c1e-7b3a-9d4e-2f6a8b1c3d5e"
	blank := "  "

	tests := []struct {
		name    string
		req     SendMessageRequest
		wantErr string
	}{
		{"direct", SendMessageRequest{RecipientID: &id, Content: "hi"}, ""},
		{"group", SendMessageRequest{GroupID: &id, Content: "hi"}, ""},
		{"empty content", SendMessageRequest{RecipientID: &id, Content: " "}, "content"},
		{"too long", SendMessageRequest{RecipientID: &id, Content: strings.Repeat("a", MaxContentLength+1)}, "content"},
		{"neither", SendMessageRequest{RecipientID: &blank, Content: "hi"}, "recipient_id"},
		{"both", SendMessageRequest{RecipientID: &id, GroupID: &id, Content: "hi"}, "recipient_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.wantErr)
		})
	}
}

func TestRecipients(t *testing.T) {
	id := "emp-1"
	assert.Equal(t, []string{"emp-1"}, (&Message{RecipientID: &id}).Recipients(nil))
	assert.Equal(t, []string{"a", "b"}, (&Message{}).Recipients(&Group{MemberIDs: []string{"a", "b"}}))
	assert.Nil(t, (&Message{}).Recipients(nil))
}
