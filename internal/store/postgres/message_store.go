package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// MessageStore implements domain.MessageStore using PostgreSQL.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore creates a MessageStore backed by the given pool.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

const messageSelectCols = `id, from_address, to_address, from_username,
	from_score, body, ts, read`

func scanMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(
		&m.ID, &m.FromAddress, &m.ToAddress, &m.FromUsername,
		&m.FromScore, &m.Body, &m.Timestamp, &m.Read,
	)
	return m, err
}

// Insert stores a new message.
func (s *MessageStore) Insert(ctx context.Context, m domain.Message) (domain.Message, error) {
	const insert = `
		INSERT INTO messages (
			id, from_address, to_address, from_username, from_score, body, ts
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + messageSelectCols

	rec, err := scanMessage(s.pool.QueryRow(ctx, insert,
		m.ID, m.FromAddress, m.ToAddress, m.FromUsername, m.FromScore, m.Body, m.Timestamp,
	))
	if err != nil {
		return domain.Message{}, fmt.Errorf("postgres: insert message: %w", err)
	}
	return rec, nil
}

// Conversation returns all messages between two addresses in chronological
// order. Address comparison is case-insensitive.
func (s *MessageStore) Conversation(ctx context.Context, addressA, addressB string) ([]domain.Message, error) {
	const query = `SELECT ` + messageSelectCols + `
		FROM messages
		WHERE (LOWER(from_address) = LOWER($1) AND LOWER(to_address) = LOWER($2))
		   OR (LOWER(from_address) = LOWER($2) AND LOWER(to_address) = LOWER($1))
		ORDER BY ts ASC`
	rows, err := s.pool.Query(ctx, query, addressA, addressB)
	if err != nil {
		return nil, fmt.Errorf("postgres: conversation: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Inbox returns one row per counterparty the address has exchanged messages
// with: the latest message and the count still unread, newest first.
func (s *MessageStore) Inbox(ctx context.Context, address string) ([]domain.ConversationSummary, error) {
	const query = `
		WITH threads AS (
			SELECT
				CASE WHEN LOWER(from_address) = LOWER($1)
					THEN LOWER(to_address) ELSE LOWER(from_address) END AS counterparty,
				body, ts,
				(LOWER(to_address) = LOWER($1) AND NOT read)::int AS unread
			FROM messages
			WHERE LOWER(from_address) = LOWER($1) OR LOWER(to_address) = LOWER($1)
		)
		SELECT counterparty, last_body, last_ts, unread_count FROM (
			SELECT DISTINCT ON (counterparty)
				counterparty,
				FIRST_VALUE(body) OVER w AS last_body,
				FIRST_VALUE(ts) OVER w AS last_ts,
				SUM(unread) OVER (PARTITION BY counterparty) AS unread_count
			FROM threads
			WINDOW w AS (PARTITION BY counterparty ORDER BY ts DESC)
			ORDER BY counterparty
		) t
		ORDER BY last_ts DESC`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("postgres: inbox: %w", err)
	}
	defer rows.Close()

	var out []domain.ConversationSummary
	for rows.Next() {
		var c domain.ConversationSummary
		if err := rows.Scan(&c.Counterparty, &c.LastMessage, &c.LastTimestamp, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("postgres: scan inbox row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UnreadCount returns how many unread messages the address has received.
func (s *MessageStore) UnreadCount(ctx context.Context, address string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE LOWER(to_address) = LOWER($1) AND NOT read`,
		address,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: unread count: %w", err)
	}
	return n, nil
}

// MarkRead flags a message as read and returns the updated record. A missing
// id returns ErrNotFound.
func (s *MessageStore) MarkRead(ctx context.Context, id string) (domain.Message, error) {
	const update = `UPDATE messages SET read = TRUE WHERE id = $1 RETURNING ` + messageSelectCols
	rec, err := scanMessage(s.pool.QueryRow(ctx, update, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("postgres: mark message read: %w", err)
	}
	return rec, nil
}

// Delete removes a message by id. A missing id returns ErrNotFound.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
