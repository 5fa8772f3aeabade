package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davronx1/leadgate/internal/usecase"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so the repositories can
// run against the pool or inside a transaction without knowing which.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements usecase.Store on Postgres.
type SQLStore struct {
	db *sql.DB
	q  queryer
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) Contacts() usecase.ContactRepository {
	return &ContactRepository{q: s.q}
}

func (s *SQLStore) Leads() usecase.LeadRepository {
	return &LeadRepository{q: s.q}
}

func (s *SQLStore) Reminders() usecase.ReminderRepository {
	return &ReminderRepository{q: s.q}
}

// WithinTx runs fn against a transaction-bound store. Nested calls reuse the
// surrounding transaction.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx usecase.Store) error) error {
	if _, alreadyTx := s.q.(*sql.Tx); alreadyTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
