/**
 * @description
 * This file implements the notification outbox. Enqueueing happens inside
 * the same transaction as the account mutation that triggers the
 * notification, so a message exists if and only if the mutation committed.
 * The relay side claims batches of due rows, with claims visible across
 * concurrent relay workers.
 *
 * @notes
 * - Claiming uses FOR UPDATE SKIP LOCKED so two workers never grab the same
 *   live row, plus a stale-processing reclaim so a crashed worker's rows
 *   become eligible again after a timeout.
 * - Rows move pending -> processing -> published, back to pending on a
 *   failed publish (with a scheduled next attempt), or to dead once the
 *   retry ceiling is reached.
 */
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOutboxRepository is the PostgreSQL implementation of the
// relay-side OutboxRepository.
type PostgresOutboxRepository struct {
	db *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository.
func NewPostgresOutboxRepository(db *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{db: db}
}

// ClaimOutboxMessages atomically claims up to limit due messages. A row is
// due when it is pending with next_attempt_at in the past, or stuck in
// processing longer than staleAfterSeconds (a crashed or stalled worker).
// Claiming increments the attempt counter.
func (r *PostgresOutboxRepository) ClaimOutboxMessages(
	ctx context.Context,
	limit int,
	staleAfterSeconds int,
) ([]OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if staleAfterSeconds <= 0 {
		staleAfterSeconds = 120
	}

	query := `
		WITH candidates AS (
			SELECT id
			FROM notification_outbox
			WHERE (
				(status = 'pending' AND next_attempt_at <= NOW())
				OR (status = 'processing' AND processing_started_at < NOW() - ($2 * INTERVAL '1 second'))
			)
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE notification_outbox AS o
		SET status = 'processing',
			processing_started_at = NOW(),
			attempts = o.attempts + 1
		FROM candidates
		WHERE o.id = candidates.id
		RETURNING o.id, o.channel, o.payload::text, o.attempts
	`

	rows, err := r.db.Query(ctx, query, limit, staleAfterSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]OutboxMessage, 0, limit)
	for rows.Next() {
		var (
			msg         OutboxMessage
			payloadText string
		)
		if err := rows.Scan(&msg.ID, &msg.Channel, &payloadText, &msg.Attempts); err != nil {
			return nil, err
		}
		msg.Payload = []byte(payloadText)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkOutboxPublished settles a message after the broker acknowledged it.
func (r *PostgresOutboxRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'published',
			published_at = NOW(),
			processing_started_at = NULL,
			last_error = NULL
		WHERE id = $1
	`, id)
	return err
}

// MarkOutboxFailed returns a message to pending with a scheduled retry.
func (r *PostgresOutboxRepository) MarkOutboxFailed(
	ctx context.Context,
	id int64,
	retryAfterSeconds int,
	reason string,
) error {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	if len(reason) > 2000 {
		reason = reason[:2000]
	}
	_, err := r.db.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'pending',
			next_attempt_at = NOW() + ($2 * INTERVAL '1 second'),
			processing_started_at = NULL,
			last_error = $3
		WHERE id = $1
	`, id, retryAfterSeconds, reason)
	return err
}

// MarkOutboxDead parks a message that exhausted its retries. Dead rows are
// kept for inspection and are excluded from claiming.
func (r *PostgresOutboxRepository) MarkOutboxDead(ctx context.Context, id int64, reason string) error {
	if len(reason) > 2000 {
		reason = reason[:2000]
	}
	_, err := r.db.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'dead',
			processing_started_at = NULL,
			last_error = $2
		WHERE id = $1
	`, id, reason)
	return err
}

// PurgePublishedOutbox deletes settled rows older than the retention window.
func (r *PostgresOutboxRepository) PurgePublishedOutbox(ctx context.Context, olderThan time.Duration) (int64, error) {
	seconds := int(olderThan.Seconds())
	tag, err := r.db.Exec(ctx, `
		DELETE FROM notification_outbox
		WHERE status = 'published' AND published_at < NOW() - ($1 * INTERVAL '1 second')
	`, seconds)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// txOutboxRepository is the enqueue side, bound to the UnitOfWork's
// transaction.
type txOutboxRepository struct {
	tx pgx.Tx
}

// Enqueue stages a notification for the relay as part of the surrounding
// transaction.
func (r *txOutboxRepository) Enqueue(ctx context.Context, channel string, payload interface{}) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = r.tx.Exec(ctx, `
		INSERT INTO notification_outbox (channel, payload)
		VALUES ($1, $2::jsonb)
	`, strings.TrimSpace(channel), string(blob))
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox notification: %w", err)
	}
	return nil
}
