package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// MessageService defines what the message handler needs from the service
// layer.
type MessageService interface {
	Send(ctx context.Context, m domain.Message) (domain.Message, error)
	Conversation(ctx context.Context, addressA, addressB string) ([]domain.Message, error)
	Inbox(ctx context.Context, address string) ([]domain.ConversationSummary, error)
	UnreadCount(ctx context.Context, address string) (int64, error)
	MarkRead(ctx context.Context, id string) (domain.Message, error)
	Delete(ctx context.Context, id string) error
}

// MessageHandler serves the direct-messaging endpoints.
type MessageHandler struct {
	messages MessageService
	logger   *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		logger:   logger,
	}
}

// Send stores a new message.
// POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var m domain.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.messages.Send(r.Context(), m)
	if err != nil {
		var ne *domain.NotEligibleError
		if errors.As(err, &ne) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    ne.Error(),
				"minScore": ne.MinScore,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: send message failed",
			slog.String("from", m.FromAddress),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// Conversation returns the thread between two addresses.
// GET /api/messages/conversation/{addressA}/{addressB}
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	a := pathParam(r, "addressA")
	b := pathParam(r, "addressB")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "missing addresses")
		return
	}

	msgs, err := h.messages.Conversation(r.Context(), a, b)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: conversation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, msgs)
}

// Inbox returns per-counterparty conversation summaries.
// GET /api/messages/inbox/{address}
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	inbox, err := h.messages.Inbox(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: inbox failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load inbox")
		return
	}
	if inbox == nil {
		inbox = []domain.ConversationSummary{}
	}

	writeJSON(w, http.StatusOK, inbox)
}

// Unread returns the unread message count for an address.
// GET /api/messages/unread/{address}
func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	n, err := h.messages.UnreadCount(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: unread count failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to count unread messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unreadCount": n})
}

// MarkRead flags a message as read.
// PATCH /api/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	m, err := h.messages.MarkRead(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: mark read failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to mark message read")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// Delete removes a message.
// DELETE /api/messages/{id}
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete message failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
