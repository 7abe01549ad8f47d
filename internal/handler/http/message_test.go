package http

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHandler_StreamDeliversEvents(t *testing.T) {
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)
	hub := sse.NewHub()
	h := NewMessageHandler(&stubMessageService{}, hub, jwtSvc)

	server := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer server.Close()

	token, _, err := jwtSvc.GenerateStreamToken("user-1", testEmployeeID)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "?token=" + token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.Eventually(t, func() bool { return hub.SubscriberCount(testEmployeeID) == 1 }, time.Second, 5*time.Millisecond)

	result := hub.Publish(testEmployeeID, sse.Event{
		RecipientID: testEmployeeID,
		Event:       "message",
		Data:        map[string]string{"id": "msg-1", "content": "hello"},
	})
	assert.Equal(t, 1, result.Delivered)

	var got []string
	for lines.Scan() {
		if lines.Text() == "event: message" {
			require.True(t, lines.Scan())
			got = append(got, lines.Text())
			break
		}
	}
	assert.Equal(t, []string{`data: {"content":"hello","id":"msg-1"}`}, got)

	require.NoError(t, resp.Body.Close())
	assert.Eventually(t, func() bool { return hub.SubscriberCount(testEmployeeID) == 0 }, time.Second, 5*time.Millisecond)
}

func TestMessageHandler_StreamRejectsAccessToken(t *testing.T) {
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)
	hub := sse.NewHub()
	h := NewMessageHandler(&stubMessageService{}, hub, jwtSvc)

	employeeID := testEmployeeID
	access, _, err := jwtSvc.GenerateAccessToken("user-1", &employeeID, "employee")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Stream(w, httptest.NewRequest(http.MethodGet, "/api/v1/messages/stream?token="+access, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, hub.TotalSubscribers())
}
