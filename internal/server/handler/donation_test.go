package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
)

type stubDonationService struct {
	record     domain.Donation
	created    bool
	donation   domain.Donation
	err        error
	list       []domain.Donation
	stats      domain.DonationStats
	lastDonor  string
	lastAmount string
}

func (s *stubDonationService) Record(ctx context.Context, d domain.Donation) (domain.Donation, bool, error) {
	if s.err != nil {
		return domain.Donation{}, false, s.err
	}
	return s.record, s.created, nil
}

func (s *stubDonationService) Donate(ctx context.Context, donorAddress, recipientUsername, amount string) (domain.Donation, error) {
	s.lastDonor = donorAddress
	s.lastAmount = amount
	return s.donation, s.err
}

func (s *stubDonationService) ListCompleted(ctx context.Context, limit int) ([]domain.Donation, error) {
	return s.list, s.err
}

func (s *stubDonationService) ListByRecipient(ctx context.Context, username string) ([]domain.Donation, error) {
	return s.list, s.err
}

func (s *stubDonationService) ListByDonor(ctx context.Context, address string) ([]domain.Donation, error) {
	return s.list, s.err
}

func (s *stubDonationService) Stats(ctx context.Context) (domain.DonationStats, error) {
	return s.stats, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDonateStatusMapping(t *testing.T) {
	settled := domain.Donation{
		ID:                "d-1",
		DonorAddress:      "0xD0N0R",
		RecipientUsername: "alice",
		Amount:            "25",
		TransactionHash:   "0xHASH",
		Status:            domain.DonationStatusCompleted,
		Timestamp:         time.Now(),
	}

	tests := []struct {
		name       string
		err        error
		donation   domain.Donation
		wantStatus int
	}{
		{
			name:       "settled",
			donation:   settled,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "below threshold",
			err:        &domain.NotEligibleError{Reason: domain.ReasonBelowThreshold, Score: 900, MinScore: 1400},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "no linked wallet",
			err:        &domain.NotEligibleError{Reason: domain.ReasonNoWallet},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid amount",
			err:        &domain.InvalidAmountError{Input: "-5", Detail: "must be positive"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown recipient",
			err:        domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wallet rejected",
			err:        domain.ErrWalletRejected,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "insufficient balance",
			err:        domain.ErrInsufficientBalance,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "confirmation timeout",
			err:        domain.ErrConfirmationTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "settled but save pending",
			err:        &domain.StorageError{Recoverable: true, Err: errors.New("db down")},
			donation:   settled,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unclassified failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubDonationService{donation: tc.donation, err: tc.err}
			h := NewDonationHandler(svc, testLogger())

			body := `{"donorAddress":"0xD0N0R","recipientUsername":"alice","amount":"25"}`
			req := httptest.NewRequest(http.MethodPost, "/api/donate", strings.NewReader(body))
			rr := httptest.NewRecorder()

			h.Donate(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestDonateReportsIneligibilityReason(t *testing.T) {
	svc := &stubDonationService{
		err: &domain.NotEligibleError{Reason: domain.ReasonBelowThreshold, Score: 900, MinScore: 1400},
	}
	h := NewDonationHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/donate",
		strings.NewReader(`{"donorAddress":"0xD0N0R","recipientUsername":"alice","amount":"25"}`))
	rr := httptest.NewRecorder()

	h.Donate(rr, req)

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["reason"] != string(domain.ReasonBelowThreshold) {
		t.Fatalf("reason = %v, want %s", resp["reason"], domain.ReasonBelowThreshold)
	}
}

func TestDonateSavePendingKeepsDonationVisible(t *testing.T) {
	settled := domain.Donation{ID: "d-1", TransactionHash: "0xHASH", Amount: "25"}
	svc := &stubDonationService{
		donation: settled,
		err:      &domain.StorageError{Recoverable: true, Err: errors.New("db down")},
	}
	h := NewDonationHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/donate",
		strings.NewReader(`{"donorAddress":"0xD0N0R","recipientUsername":"alice","amount":"25"}`))
	rr := httptest.NewRecorder()

	h.Donate(rr, req)

	var resp struct {
		Donation domain.Donation `json:"donation"`
		Warning  string          `json:"warning"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Donation.TransactionHash != "0xHASH" {
		t.Fatalf("tx hash = %q, want 0xHASH", resp.Donation.TransactionHash)
	}
	if resp.Warning == "" {
		t.Fatal("expected a save-pending warning")
	}
}

func TestCreateDistinguishesReplay(t *testing.T) {
	rec := domain.Donation{ID: "d-1", Amount: "10"}
	body := `{"donorAddress":"0xD0N0R","recipientUsername":"alice","amount":"10","transactionHash":"0xHASH"}`

	tests := []struct {
		name       string
		created    bool
		wantStatus int
	}{
		{name: "first save", created: true, wantStatus: http.StatusCreated},
		{name: "replay", created: false, wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubDonationService{record: rec, created: tc.created}
			h := NewDonationHandler(svc, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(body))
			rr := httptest.NewRecorder()

			h.Create(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestCreateRejectsInvalidBody(t *testing.T) {
	h := NewDonationHandler(&stubDonationService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"missing donor", &domain.ValidationError{Field: "donorAddress", Detail: "required"}},
		{"missing recipient", &domain.ValidationError{Field: "recipientUsername", Detail: "required"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewDonationHandler(&stubDonationService{err: tc.err}, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/donations",
				strings.NewReader(`{"recipientUsername":"alice","amount":"50"}`))
			rr := httptest.NewRecorder()

			h.Create(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestListReturnsEmptyArrayNotNull(t *testing.T) {
	h := NewDonationHandler(&stubDonationService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want []", got)
	}
}
