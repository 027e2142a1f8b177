package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
)

type stubDonationStore struct {
	recorded []domain.Donation
}

func (s *stubDonationStore) Record(ctx context.Context, d domain.Donation) (domain.Donation, bool, error) {
	s.recorded = append(s.recorded, d)
	return d, true, nil
}

func (s *stubDonationStore) FindByDedupeKey(ctx context.Context, key string) (domain.Donation, error) {
	return domain.Donation{}, domain.ErrNotFound
}

func (s *stubDonationStore) ListCompleted(ctx context.Context, limit int) ([]domain.Donation, error) {
	return nil, nil
}

func (s *stubDonationStore) ListByRecipient(ctx context.Context, username string) ([]domain.Donation, error) {
	return nil, nil
}

func (s *stubDonationStore) ListByDonor(ctx context.Context, address string) ([]domain.Donation, error) {
	return nil, nil
}

func (s *stubDonationStore) Stats(ctx context.Context) (domain.DonationStats, error) {
	return domain.DonationStats{}, nil
}

func (s *stubDonationStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Donation, error) {
	return nil, nil
}

func (s *stubDonationStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func TestRecordValidatesRequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		donation  domain.Donation
		wantField string
	}{
		{
			"missing donor",
			domain.Donation{RecipientUsername: "alice", Amount: "50"},
			"donorAddress",
		},
		{
			"missing recipient",
			domain.Donation{DonorAddress: "0xD0N0R", Amount: "50"},
			"recipientUsername",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubDonationStore{}
			svc := NewDonationService(store, nil, slog.Default())

			_, _, err := svc.Record(context.Background(), tt.donation)

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
			if len(store.recorded) != 0 {
				t.Error("invalid donation reached the store")
			}
		})
	}
}

func TestRecordFillsDefaults(t *testing.T) {
	store := &stubDonationStore{}
	svc := NewDonationService(store, nil, slog.Default())

	rec, created, err := svc.Record(context.Background(), domain.Donation{
		DonorAddress:      "0xD0N0R",
		RecipientUsername: "alice",
		Amount:            "50",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !created {
		t.Error("first record should create")
	}
	if rec.ID == "" {
		t.Error("ID not assigned")
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp not assigned")
	}
	if rec.Status != domain.DonationStatusCompleted {
		t.Errorf("status = %q, want %q", rec.Status, domain.DonationStatusCompleted)
	}
}
