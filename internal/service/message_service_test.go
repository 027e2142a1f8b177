package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hallenjay/tokentribute/internal/domain"
)

type stubSenderDirectory struct {
	profile domain.Profile
	err     error
}

func (s *stubSenderDirectory) UserByAddress(ctx context.Context, address string) (domain.Profile, error) {
	return s.profile, s.err
}

type stubMessageStore struct {
	inserted []domain.Message
}

func (s *stubMessageStore) Insert(ctx context.Context, m domain.Message) (domain.Message, error) {
	s.inserted = append(s.inserted, m)
	return m, nil
}

func (s *stubMessageStore) Conversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	return nil, nil
}

func (s *stubMessageStore) Inbox(ctx context.Context, address string) ([]domain.ConversationSummary, error) {
	return nil, nil
}

func (s *stubMessageStore) UnreadCount(ctx context.Context, address string) (int64, error) {
	return 0, nil
}

func (s *stubMessageStore) MarkRead(ctx context.Context, id string) (domain.Message, error) {
	return domain.Message{}, domain.ErrNotFound
}

func (s *stubMessageStore) Delete(ctx context.Context, id string) error {
	return nil
}

func TestSendGatesOnSenderScore(t *testing.T) {
	tests := []struct {
		name     string
		profile  domain.Profile
		err      error
		wantSent bool
	}{
		{"above threshold", domain.Profile{Username: "alice", CredibilityScore: 25}, nil, true},
		{"at threshold", domain.Profile{Username: "bob", CredibilityScore: 10}, nil, true},
		{"below threshold", domain.Profile{Username: "carol", CredibilityScore: 3}, nil, false},
		{"no profile", domain.Profile{}, domain.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubMessageStore{}
			svc := NewMessageService(store, &stubSenderDirectory{profile: tt.profile, err: tt.err}, 10, slog.Default())

			msg, err := svc.Send(context.Background(), domain.Message{
				FromAddress: "0xFROM",
				ToAddress:   "0xTO",
				Body:        "gm",
			})

			if tt.wantSent {
				if err != nil {
					t.Fatalf("Send: %v", err)
				}
				if msg.FromScore != tt.profile.CredibilityScore {
					t.Errorf("FromScore = %d, want %d", msg.FromScore, tt.profile.CredibilityScore)
				}
				if msg.FromUsername != tt.profile.Username {
					t.Errorf("FromUsername = %q", msg.FromUsername)
				}
				if len(store.inserted) != 1 {
					t.Errorf("inserted %d messages, want 1", len(store.inserted))
				}
				return
			}

			var ne *domain.NotEligibleError
			if !errors.As(err, &ne) {
				t.Fatalf("error = %v, want NotEligibleError", err)
			}
			if len(store.inserted) != 0 {
				t.Errorf("inserted %d messages, want 0", len(store.inserted))
			}
		})
	}
}

func TestSendRejectsEmptyFields(t *testing.T) {
	svc := NewMessageService(&stubMessageStore{}, &stubSenderDirectory{}, 10, slog.Default())

	if _, err := svc.Send(context.Background(), domain.Message{FromAddress: "0xF", ToAddress: "0xT"}); err == nil {
		t.Fatal("empty body should be rejected")
	}
}
