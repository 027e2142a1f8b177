package domain

import (
	"fmt"
	"strings"
	"time"
)

// DonationStatus tracks the donation record lifecycle.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
)

// Donation is a persisted record of a settled USDC transfer. The amount is
// kept as the donor-entered decimal string so the ledger shows exactly what
// was typed; the on-chain integer amount lives in the transaction itself.
type Donation struct {
	ID                string         `json:"id"`
	DonorAddress      string         `json:"donorAddress"`
	RecipientUsername string         `json:"recipientUsername"`
	RecipientAvatar   string         `json:"recipientAvatar,omitempty"`
	Amount            string         `json:"amount"`
	Timestamp         time.Time      `json:"timestamp"`
	TransactionHash   string         `json:"transactionHash,omitempty"`
	Status            DonationStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// DedupeKey is the logical identity of a donation for idempotency purposes.
// Two records with the same key are the same event. When the transaction hash
// is present it anchors the key; on the degraded path (no hash) the timestamp
// is bucketed to whole seconds so a duplicate submission within the same
// second collapses onto the first.
func (d Donation) DedupeKey() string {
	donor := strings.ToLower(d.DonorAddress)
	if d.TransactionHash != "" {
		return fmt.Sprintf("%s|%s|%s|%s", donor, d.RecipientUsername, d.Amount, strings.ToLower(d.TransactionHash))
	}
	return fmt.Sprintf("%s|%s|%s|t%d", donor, d.RecipientUsername, d.Amount, d.Timestamp.Unix())
}

// DonationStats is the aggregate view served by the stats endpoint.
type DonationStats struct {
	TotalDonations int64          `json:"totalDonations"`
	TotalAmount    float64        `json:"totalAmount"`
	TopRecipients  []TopRecipient `json:"topRecipients"`
}

// TopRecipient is one row of the top-recipients leaderboard.
type TopRecipient struct {
	Username string  `json:"username"`
	Count    int64   `json:"count"`
	Total    float64 `json:"total"`
}
