package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/message"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

const streamKeepalive = 30 * time.Second

// MessageHandler defines the message handler interface
type MessageHandler interface {
	Send(w http.ResponseWriter, r *http.Request)
	Inbox(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// SSE
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// Subscriber hands out live event channels per recipient. *sse.Hub satisfies it.
type Subscriber interface {
	Subscribe(recipientID string) (<-chan sse.Event, func())
}

type messageHandlerImpl struct {
	messageService message.MessageService
	subscriber     Subscriber
	jwtService     jwt.Service
	keepalive      time.Duration
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService message.MessageService, subscriber Subscriber, jwtService jwt.Service) MessageHandler {
	return &messageHandlerImpl{
		messageService: messageService,
		subscriber:     subscriber,
		jwtService:     jwtService,
		keepalive:      streamKeepalive,
	}
}

// Send handles POST /messages
func (h *messageHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	var req message.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.messageService.Send(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Message sent", result)
}

// Inbox returns paginated messages addressed to the caller
func (h *messageHandlerImpl) Inbox(w http.ResponseWriter, r *http.Request) {
	filter := message.InboxFilter{
		Status: optionalQuery(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	result, err := h.messageService.ListInbox(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := result.Messages
	if items == nil {
		items = []message.MessageResponse{}
	}
	response.SuccessWithMeta(w, items, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// MarkRead handles POST /messages/{id}/read
func (h *messageHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	result, err := h.messageService.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Message marked as read", result)
}

// Delete handles DELETE /messages/{id}
func (h *messageHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.messageService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Message deleted", nil)
}

// GetStreamToken generates a short-lived token for the message stream
func (h *messageHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !actor.HasEmployee() {
		response.HandleError(w, user.ErrEmployeeProfileRequired)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(actor.UserID, actor.EmployeeID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, message.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection for live message delivery
func (h *messageHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send custom headers
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	employeeID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.subscriber.Subscribe(employeeID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"employee_id\":%q}\n\n", employeeID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode stream event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
