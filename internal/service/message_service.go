package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// SenderDirectory resolves the sender's profile for the messaging gate.
type SenderDirectory interface {
	UserByAddress(ctx context.Context, address string) (domain.Profile, error)
}

// MessageService handles direct messages between wallet addresses. Sending
// is gated on the sender's credibility score; the gate has its own threshold,
// deliberately independent from the donation one.
type MessageService struct {
	messages  domain.MessageStore
	directory SenderDirectory
	minScore  int
	logger    *slog.Logger
}

// NewMessageService creates a MessageService.
func NewMessageService(
	messages domain.MessageStore,
	directory SenderDirectory,
	minScore int,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		messages:  messages,
		directory: directory,
		minScore:  minScore,
		logger:    logger,
	}
}

// Send stores a new message after gating on the sender's score. A sender with
// no Ethos profile is treated as score zero rather than rejected outright.
func (s *MessageService) Send(ctx context.Context, m domain.Message) (domain.Message, error) {
	if m.FromAddress == "" || m.ToAddress == "" || m.Body == "" {
		return domain.Message{}, fmt.Errorf("message_service: from, to and body are required")
	}

	profile, err := s.directory.UserByAddress(ctx, m.FromAddress)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Message{}, fmt.Errorf("message_service: sender lookup: %w", err)
	}

	if profile.CredibilityScore < s.minScore {
		return domain.Message{}, &domain.NotEligibleError{
			Reason:   domain.ReasonBelowThreshold,
			Score:    profile.CredibilityScore,
			MinScore: s.minScore,
		}
	}

	m.ID = uuid.NewString()
	m.FromUsername = profile.Username
	m.FromScore = profile.CredibilityScore
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}

	rec, err := s.messages.Insert(ctx, m)
	if err != nil {
		return domain.Message{}, fmt.Errorf("message_service: insert: %w", err)
	}

	s.logger.InfoContext(ctx, "message_service: message sent",
		slog.String("from", m.FromAddress),
		slog.String("to", m.ToAddress),
	)
	return rec, nil
}

// Conversation returns the full thread between two addresses.
func (s *MessageService) Conversation(ctx context.Context, addressA, addressB string) ([]domain.Message, error) {
	msgs, err := s.messages.Conversation(ctx, addressA, addressB)
	if err != nil {
		return nil, fmt.Errorf("message_service: conversation: %w", err)
	}
	return msgs, nil
}

// Inbox returns per-counterparty summaries for an address.
func (s *MessageService) Inbox(ctx context.Context, address string) ([]domain.ConversationSummary, error) {
	inbox, err := s.messages.Inbox(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("message_service: inbox: %w", err)
	}
	return inbox, nil
}

// UnreadCount returns how many unread messages an address has.
func (s *MessageService) UnreadCount(ctx context.Context, address string) (int64, error) {
	n, err := s.messages.UnreadCount(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("message_service: unread count: %w", err)
	}
	return n, nil
}

// MarkRead flags a message as read.
func (s *MessageService) MarkRead(ctx context.Context, id string) (domain.Message, error) {
	m, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("message_service: mark read: %w", err)
	}
	return m, nil
}

// Delete removes a message.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		return fmt.Errorf("message_service: delete: %w", err)
	}
	return nil
}
