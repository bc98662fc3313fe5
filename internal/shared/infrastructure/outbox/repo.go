package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/keyturn/keyturn/internal/shared/infrastructure/database"
)

// Repo implements Repository on top of the shared database abstraction.
// It joins an in-flight transaction when one is carried in the context,
// which is what makes the outbox transactional.
type Repo struct {
	conn database.Connection
}

// NewRepo creates a new outbox repository.
func NewRepo(conn database.Connection) *Repo {
	return &Repo{conn: conn}
}

const insertQuery = `
	INSERT INTO outbox (
		event_id, aggregate_type, aggregate_id, event_type, routing_key,
		payload, metadata, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id
`

// Save stores a new outbox message.
func (r *Repo) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := database.Rebind(r.conn.Driver(), insertQuery)
	return exec.QueryRow(ctx, query,
		msg.EventID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.RoutingKey,
		[]byte(msg.Payload),
		[]byte(msg.Metadata),
		msg.CreatedAt,
	).Scan(&msg.ID)
}

// SaveBatch stores multiple outbox messages. When called inside a unit
// of work the messages commit with the surrounding transaction.
func (r *Repo) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if database.TxFromContext(ctx) != nil {
		for _, msg := range msgs {
			if err := r.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txCtx := database.WithTx(ctx, tx, true)
	for _, msg := range msgs {
		if err := r.Save(txCtx, msg); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
// Messages with a future next_retry_at are skipped until due.
func (r *Repo) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := database.Rebind(r.conn.Driver(), `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
		       payload, metadata, created_at, published_at, next_retry_at,
		       retry_count, last_error, dead_lettered_at, dead_letter_reason
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?
	`)

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpublished messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg := &Message{}
		var payload, metadata []byte
		err := rows.Scan(
			&msg.ID,
			&msg.EventID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.RoutingKey,
			&payload,
			&metadata,
			&msg.CreatedAt,
			&msg.PublishedAt,
			&msg.NextRetryAt,
			&msg.RetryCount,
			&msg.LastError,
			&msg.DeadLetteredAt,
			&msg.DeadLetterReason,
		)
		if err != nil {
			return nil, err
		}
		msg.Payload = payload
		msg.Metadata = metadata
		msgs = append(msgs, msg)
	}

	return msgs, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *Repo) MarkPublished(ctx context.Context, id int64) error {
	query := database.Rebind(r.conn.Driver(),
		`UPDATE outbox SET published_at = ? WHERE id = ?`)
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, time.Now().UTC(), id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *Repo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := database.Rebind(r.conn.Driver(), `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?
	`)
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, errMsg, nextRetryAt, id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *Repo) MarkDead(ctx context.Context, id int64, reason string) error {
	query := database.Rebind(r.conn.Driver(), `
		UPDATE outbox
		SET dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?
	`)
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query, time.Now().UTC(), reason, id)
	return err
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *Repo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	query := database.Rebind(r.conn.Driver(),
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`)
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
