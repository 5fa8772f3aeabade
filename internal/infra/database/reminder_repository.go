package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
)

type ReminderRepository struct {
	q queryer
}

func (r *ReminderRepository) FindByContactID(ctx context.Context, contactID string) (*entity.ReminderState, error) {
	query := `
		SELECT contact_id, reminder_count, has_joined, last_sent_at, next_due_at, joined_at
		FROM channel_reminders
		WHERE contact_id = $1
	`
	var (
		rem                           entity.ReminderState
		lastSent, nextDue, joinedAt   sql.NullTime
	)
	err := r.q.QueryRowContext(ctx, query, contactID).Scan(
		&rem.ContactID,
		&rem.Count,
		&rem.HasJoined,
		&lastSent,
		&nextDue,
		&joinedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rem.LastSentAt = timePtr(lastSent)
	rem.NextDueAt = timePtr(nextDue)
	rem.JoinedAt = timePtr(joinedAt)
	return &rem, nil
}

func (r *ReminderRepository) Upsert(ctx context.Context, rem *entity.ReminderState) error {
	query := `
		INSERT INTO channel_reminders (contact_id, reminder_count, has_joined, last_sent_at, next_due_at, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (contact_id) DO UPDATE
		SET reminder_count = EXCLUDED.reminder_count,
		    has_joined = EXCLUDED.has_joined,
		    last_sent_at = EXCLUDED.last_sent_at,
		    next_due_at = EXCLUDED.next_due_at,
		    joined_at = EXCLUDED.joined_at
	`
	_, err := r.q.ExecContext(ctx, query,
		rem.ContactID,
		rem.Count,
		rem.HasJoined,
		nullTime(rem.LastSentAt),
		nullTime(rem.NextDueAt),
		nullTime(rem.JoinedAt),
	)
	return err
}

func (r *ReminderRepository) Reassign(ctx context.Context, fromContactID, toContactID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE channel_reminders SET contact_id = $2 WHERE contact_id = $1`,
		fromContactID, toContactID,
	)
	return err
}

func (r *ReminderRepository) Delete(ctx context.Context, contactID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM channel_reminders WHERE contact_id = $1`, contactID)
	return err
}

func (r *ReminderRepository) DueContactIDs(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		SELECT contact_id
		FROM channel_reminders
		WHERE has_joined = FALSE AND next_due_at IS NOT NULL AND next_due_at <= $1
	`
	rows, err := r.q.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ReminderRepository) CompleteGoal(ctx context.Context, contactID string, now time.Time) error {
	// updates every matching row, keeps the first joined_at
	_, err := r.q.ExecContext(ctx, `
		UPDATE channel_reminders
		SET has_joined = TRUE,
		    next_due_at = NULL,
		    joined_at = COALESCE(joined_at, $2)
		WHERE contact_id = $1
	`, contactID, now)
	return err
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
