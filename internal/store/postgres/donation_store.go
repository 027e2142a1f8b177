package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// DonationStore implements domain.DonationStore using PostgreSQL.
type DonationStore struct {
	pool *pgxpool.Pool
}

// NewDonationStore creates a DonationStore backed by the given pool.
func NewDonationStore(pool *pgxpool.Pool) *DonationStore {
	return &DonationStore{pool: pool}
}

const donationSelectCols = `id, donor_address, recipient_username, recipient_avatar,
	amount, ts, tx_hash, status, created_at`

func scanDonationRows(rows pgx.Rows) ([]domain.Donation, error) {
	var out []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(
			&d.ID, &d.DonorAddress, &d.RecipientUsername, &d.RecipientAvatar,
			&d.Amount, &d.Timestamp, &d.TransactionHash, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Record inserts a donation, deduplicating on its logical identity. A replay
// of an already-recorded donation is absorbed by ON CONFLICT DO NOTHING and
// the existing row is returned with created=false.
func (s *DonationStore) Record(ctx context.Context, d domain.Donation) (domain.Donation, bool, error) {
	key := d.DedupeKey()

	const insert = `
		INSERT INTO donations (
			id, donor_address, recipient_username, recipient_avatar,
			amount, ts, tx_hash, status, dedupe_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (dedupe_key) DO NOTHING
		RETURNING ` + donationSelectCols

	var rec domain.Donation
	err := s.pool.QueryRow(ctx, insert,
		d.ID, d.DonorAddress, d.RecipientUsername, d.RecipientAvatar,
		d.Amount, d.Timestamp, d.TransactionHash, d.Status, key,
	).Scan(
		&rec.ID, &rec.DonorAddress, &rec.RecipientUsername, &rec.RecipientAvatar,
		&rec.Amount, &rec.Timestamp, &rec.TransactionHash, &rec.Status, &rec.CreatedAt,
	)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Donation{}, false, fmt.Errorf("postgres: record donation: %w", err)
	}

	// Conflict path: the donation already exists, fetch it.
	rec, err = s.FindByDedupeKey(ctx, key)
	if err != nil {
		return domain.Donation{}, false, fmt.Errorf("postgres: fetch existing donation: %w", err)
	}
	return rec, false, nil
}

// FindByDedupeKey returns the stored donation with the given logical identity.
func (s *DonationStore) FindByDedupeKey(ctx context.Context, key string) (domain.Donation, error) {
	const query = `SELECT ` + donationSelectCols + ` FROM donations WHERE dedupe_key = $1`

	var rec domain.Donation
	err := s.pool.QueryRow(ctx, query, key).Scan(
		&rec.ID, &rec.DonorAddress, &rec.RecipientUsername, &rec.RecipientAvatar,
		&rec.Amount, &rec.Timestamp, &rec.TransactionHash, &rec.Status, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Donation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Donation{}, fmt.Errorf("postgres: find donation by key: %w", err)
	}
	return rec, nil
}

// ListCompleted returns the most recent completed donations, newest first.
func (s *DonationStore) ListCompleted(ctx context.Context, limit int) ([]domain.Donation, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + donationSelectCols + `
		FROM donations WHERE status = $1 ORDER BY ts DESC LIMIT $2`
	rows, err := s.pool.Query(ctx, query, domain.DonationStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list completed donations: %w", err)
	}
	defer rows.Close()
	return scanDonationRows(rows)
}

// ListByRecipient returns donations received by a username, newest first.
func (s *DonationStore) ListByRecipient(ctx context.Context, username string) ([]domain.Donation, error) {
	const query = `SELECT ` + donationSelectCols + `
		FROM donations WHERE recipient_username = $1 ORDER BY ts DESC`
	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("postgres: list donations by recipient: %w", err)
	}
	defer rows.Close()
	return scanDonationRows(rows)
}

// ListByDonor returns donations sent by a wallet, newest first. The address
// comparison is case-insensitive.
func (s *DonationStore) ListByDonor(ctx context.Context, address string) ([]domain.Donation, error) {
	const query = `SELECT ` + donationSelectCols + `
		FROM donations WHERE LOWER(donor_address) = LOWER($1) ORDER BY ts DESC`
	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("postgres: list donations by donor: %w", err)
	}
	defer rows.Close()
	return scanDonationRows(rows)
}

// Stats aggregates the completed ledger: totals plus a top-recipients
// leaderboard ordered by amount received.
func (s *DonationStore) Stats(ctx context.Context) (domain.DonationStats, error) {
	var stats domain.DonationStats

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount::numeric), 0)::float8
		FROM donations WHERE status = $1`,
		domain.DonationStatusCompleted,
	).Scan(&stats.TotalDonations, &stats.TotalAmount)
	if err != nil {
		return domain.DonationStats{}, fmt.Errorf("postgres: donation totals: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT recipient_username, COUNT(*), SUM(amount::numeric)::float8
		FROM donations WHERE status = $1
		GROUP BY recipient_username
		ORDER BY SUM(amount::numeric) DESC
		LIMIT 10`,
		domain.DonationStatusCompleted,
	)
	if err != nil {
		return domain.DonationStats{}, fmt.Errorf("postgres: top recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.TopRecipient
		if err := rows.Scan(&r.Username, &r.Count, &r.Total); err != nil {
			return domain.DonationStats{}, fmt.Errorf("postgres: scan top recipient: %w", err)
		}
		stats.TopRecipients = append(stats.TopRecipients, r)
	}
	if err := rows.Err(); err != nil {
		return domain.DonationStats{}, fmt.Errorf("postgres: top recipients rows: %w", err)
	}

	return stats, nil
}

// ListBefore returns donations older than the given time, oldest first, for
// archival.
func (s *DonationStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Donation, error) {
	const query = `SELECT ` + donationSelectCols + `
		FROM donations WHERE ts < $1 ORDER BY ts ASC`
	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list donations before: %w", err)
	}
	defer rows.Close()
	return scanDonationRows(rows)
}

// DeleteBefore removes donations older than the given time, returning the
// number deleted.
func (s *DonationStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM donations WHERE ts < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete donations before: %w", err)
	}
	return tag.RowsAffected(), nil
}
