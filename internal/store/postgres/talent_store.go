package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// TalentStore implements domain.TalentStore using PostgreSQL.
type TalentStore struct {
	pool *pgxpool.Pool
}

// NewTalentStore creates a TalentStore backed by the given pool.
func NewTalentStore(pool *pgxpool.Pool) *TalentStore {
	return &TalentStore{pool: pool}
}

const talentSelectCols = `id, founder_address, profile_id, display_name,
	username, avatar_url, credibility_score, profile_url, saved_at`

// Save bookmarks a profile for a founder wallet. Saving the same profile
// twice returns ErrAlreadyExists.
func (s *TalentStore) Save(ctx context.Context, t domain.SavedTalent) (domain.SavedTalent, error) {
	const insert = `
		INSERT INTO saved_talent (
			id, founder_address, profile_id, display_name,
			username, avatar_url, credibility_score, profile_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (founder_address, profile_id) DO NOTHING
		RETURNING ` + talentSelectCols

	var rec domain.SavedTalent
	err := s.pool.QueryRow(ctx, insert,
		t.ID, t.FounderAddress, t.ProfileID, t.DisplayName,
		t.Username, t.AvatarURL, t.CredibilityScore, t.ProfileURL,
	).Scan(
		&rec.ID, &rec.FounderAddress, &rec.ProfileID, &rec.DisplayName,
		&rec.Username, &rec.AvatarURL, &rec.CredibilityScore, &rec.ProfileURL,
		&rec.SavedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SavedTalent{}, domain.ErrAlreadyExists
	}
	if err != nil {
		return domain.SavedTalent{}, fmt.Errorf("postgres: save talent: %w", err)
	}
	return rec, nil
}

// ListByFounder returns a founder's bookmarks, most recent first.
func (s *TalentStore) ListByFounder(ctx context.Context, founderAddress string) ([]domain.SavedTalent, error) {
	const query = `SELECT ` + talentSelectCols + `
		FROM saved_talent WHERE LOWER(founder_address) = LOWER($1) ORDER BY saved_at DESC`
	rows, err := s.pool.Query(ctx, query, founderAddress)
	if err != nil {
		return nil, fmt.Errorf("postgres: list talent by founder: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedTalent
	for rows.Next() {
		var t domain.SavedTalent
		if err := rows.Scan(
			&t.ID, &t.FounderAddress, &t.ProfileID, &t.DisplayName,
			&t.Username, &t.AvatarURL, &t.CredibilityScore, &t.ProfileURL,
			&t.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan talent: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a bookmark by id. A missing id returns ErrNotFound.
func (s *TalentStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_talent WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete talent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
