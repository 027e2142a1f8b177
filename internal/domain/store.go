package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// DonationStore persists the donation ledger.
type DonationStore interface {
	// Record inserts a donation, deduplicating on Donation.DedupeKey. When a
	// record with the same logical identity already exists, the existing
	// record is returned and created is false.
	Record(ctx context.Context, d Donation) (rec Donation, created bool, err error)
	// FindByDedupeKey returns the stored record with the given logical
	// identity, or ErrNotFound.
	FindByDedupeKey(ctx context.Context, key string) (Donation, error)
	ListCompleted(ctx context.Context, limit int) ([]Donation, error)
	ListByRecipient(ctx context.Context, username string) ([]Donation, error)
	ListByDonor(ctx context.Context, address string) ([]Donation, error)
	Stats(ctx context.Context) (DonationStats, error)
	// ListBefore and DeleteBefore support ledger archival.
	ListBefore(ctx context.Context, before time.Time) ([]Donation, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// TalentStore persists founder bookmarks.
type TalentStore interface {
	Save(ctx context.Context, t SavedTalent) (SavedTalent, error)
	ListByFounder(ctx context.Context, founderAddress string) ([]SavedTalent, error)
	Delete(ctx context.Context, id string) error
}

// MessageStore persists direct messages.
type MessageStore interface {
	Insert(ctx context.Context, m Message) (Message, error)
	Conversation(ctx context.Context, addressA, addressB string) ([]Message, error)
	Inbox(ctx context.Context, address string) ([]ConversationSummary, error)
	UnreadCount(ctx context.Context, address string) (int64, error)
	MarkRead(ctx context.Context, id string) (Message, error)
	Delete(ctx context.Context, id string) error
}
