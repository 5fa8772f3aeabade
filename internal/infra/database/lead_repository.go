package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/davronx1/leadgate/internal/entity"
)

type LeadRepository struct {
	q queryer
}

const leadColumns = `id, contact_id, location, company_type, role_in_company, interests,
	company_description, annual_turnover, number_of_employees, full_name, phone,
	company_name, status, decided_by, rejection_reason, telegram_chat_id,
	telegram_message_id, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.q.ExecContext(ctx, query,
		l.ID,
		l.ContactID,
		l.Location,
		nullString(l.CompanyType),
		nullString(l.RoleInCompany),
		pq.Array(l.Interests),
		nullString(l.CompanyDescription),
		nullString(l.AnnualTurnover),
		nullString(l.NumberOfEmployees),
		l.FullName,
		l.Phone,
		nullString(l.CompanyName),
		string(l.Status),
		nullString(l.DecidedBy),
		nullString(l.RejectionReason),
		nullString(l.TelegramChatID),
		nullInt64(l.TelegramMessageID),
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	row := r.q.QueryRowContext(ctx, query, id)

	var (
		l                                                 entity.Lead
		companyType, role, desc, turnover, employees      sql.NullString
		companyName, decidedBy, reason, chatID            sql.NullString
		messageID                                         sql.NullInt64
		status                                            string
	)
	err := row.Scan(
		&l.ID,
		&l.ContactID,
		&l.Location,
		&companyType,
		&role,
		pq.Array(&l.Interests),
		&desc,
		&turnover,
		&employees,
		&l.FullName,
		&l.Phone,
		&companyName,
		&status,
		&decidedBy,
		&reason,
		&chatID,
		&messageID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l.CompanyType = companyType.String
	l.RoleInCompany = role.String
	l.CompanyDescription = desc.String
	l.AnnualTurnover = turnover.String
	l.NumberOfEmployees = employees.String
	l.CompanyName = companyName.String
	l.Status = entity.LeadStatus(status)
	l.DecidedBy = decidedBy.String
	l.RejectionReason = reason.String
	l.TelegramChatID = chatID.String
	l.TelegramMessageID = messageID.Int64
	return &l, nil
}

func (r *LeadRepository) CountByContactID(ctx context.Context, contactID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE contact_id = $1`, contactID).Scan(&n)
	return n, err
}

func (r *LeadRepository) ReassignContact(ctx context.Context, fromID, toID string) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE leads SET contact_id = $2, updated_at = NOW() WHERE contact_id = $1`,
		fromID, toID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads
		SET contact_id = $2,
		    status = $3,
		    decided_by = $4,
		    rejection_reason = $5,
		    updated_at = $6
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		l.ID,
		l.ContactID,
		string(l.Status),
		nullString(l.DecidedBy),
		nullString(l.RejectionReason),
		l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return entity.ErrNotFound
	}
	return err
}

// SetReviewMessage records where the lead was posted for review. Written once;
// never cleared afterwards.
func (r *LeadRepository) SetReviewMessage(ctx context.Context, leadID, chatID string, messageID int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE leads SET telegram_chat_id = $2, telegram_message_id = $3, updated_at = NOW() WHERE id = $1`,
		leadID, chatID, messageID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return entity.ErrNotFound
	}
	return err
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
