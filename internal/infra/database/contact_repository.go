package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/davronx1/leadgate/internal/entity"
)

type ContactRepository struct {
	q queryer
}

const contactColumns = `id, phone, telegram_id, telegram_username, first_name, last_name, locale, channel_joined, created_at, updated_at`

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.ExecContext(ctx, query,
		c.ID,
		c.Phone,
		nullString(c.TelegramID),
		nullString(c.TelegramUsername),
		nullString(c.FirstName),
		nullString(c.LastName),
		c.Locale,
		c.ChannelJoined,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return mapContactError(err)
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*entity.Contact, error) {
	return r.findBy(ctx, "id", id)
}

func (r *ContactRepository) FindByPhone(ctx context.Context, phone string) (*entity.Contact, error) {
	return r.findBy(ctx, "phone", phone)
}

func (r *ContactRepository) FindByTelegramID(ctx context.Context, telegramID string) (*entity.Contact, error) {
	return r.findBy(ctx, "telegram_id", telegramID)
}

func (r *ContactRepository) findBy(ctx context.Context, column, value string) (*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + column + ` = $1`
	row := r.q.QueryRowContext(ctx, query, value)
	return scanContact(row)
}

func (r *ContactRepository) Update(ctx context.Context, c *entity.Contact) error {
	query := `
		UPDATE contacts
		SET phone = $2,
		    telegram_id = $3,
		    telegram_username = $4,
		    first_name = $5,
		    last_name = $6,
		    locale = $7,
		    channel_joined = $8,
		    updated_at = $9
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		c.ID,
		c.Phone,
		nullString(c.TelegramID),
		nullString(c.TelegramUsername),
		nullString(c.FirstName),
		nullString(c.LastName),
		c.Locale,
		c.ChannelJoined,
		c.UpdatedAt,
	)
	if err != nil {
		return mapContactError(err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return entity.ErrNotFound
	}
	return err
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return entity.ErrNotFound
	}
	return err
}

func scanContact(row *sql.Row) (*entity.Contact, error) {
	var (
		c                                  entity.Contact
		telegramID, username, first, last  sql.NullString
	)
	err := row.Scan(
		&c.ID,
		&c.Phone,
		&telegramID,
		&username,
		&first,
		&last,
		&c.Locale,
		&c.ChannelJoined,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.TelegramID = telegramID.String
	c.TelegramUsername = username.String
	c.FirstName = first.String
	c.LastName = last.String
	return &c, nil
}

// mapContactError turns a Postgres unique violation into the sentinel the
// use cases use to trigger the re-resolve-and-merge path.
func mapContactError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "telegram") {
			return entity.ErrTelegramIDTaken
		}
		return entity.ErrPhoneTaken
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
