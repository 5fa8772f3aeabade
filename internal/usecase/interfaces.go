package usecase

import (
	"context"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
)

type ContactRepository interface {
	Create(ctx context.Context, c *entity.Contact) error
	FindByID(ctx context.Context, id string) (*entity.Contact, error)
	FindByPhone(ctx context.Context, phone string) (*entity.Contact, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*entity.Contact, error)
	Update(ctx context.Context, c *entity.Contact) error
	Delete(ctx context.Context, id string) error
}

type LeadRepository interface {
	Create(ctx context.Context, l *entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	CountByContactID(ctx context.Context, contactID string) (int, error)
	// ReassignContact moves every lead owned by fromID to toID.
	ReassignContact(ctx context.Context, fromID, toID string) (int64, error)
	Update(ctx context.Context, l *entity.Lead) error
	SetReviewMessage(ctx context.Context, leadID, chatID string, messageID int64) error
}

type ReminderRepository interface {
	FindByContactID(ctx context.Context, contactID string) (*entity.ReminderState, error)
	Upsert(ctx context.Context, r *entity.ReminderState) error
	Reassign(ctx context.Context, fromContactID, toContactID string) error
	Delete(ctx context.Context, contactID string) error
	DueContactIDs(ctx context.Context, now time.Time) ([]string, error)
	// CompleteGoal marks the contact's row as joined and clears next-due.
	// Idempotent; the first join timestamp is kept.
	CompleteGoal(ctx context.Context, contactID string, now time.Time) error
}

// Store groups the repositories behind a single transaction boundary.
// Inside WithinTx the callback receives a Store bound to the transaction;
// either every write commits or none do.
type Store interface {
	Contacts() ContactRepository
	Leads() LeadRepository
	Reminders() ReminderRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Notifier is the external notification surface. All methods are best-effort:
// callers log failures and never let them abort a transaction.
type Notifier interface {
	PostForReview(ctx context.Context, l *entity.Lead) error
	UpdateReviewMessage(ctx context.Context, l *entity.Lead) error
	NotifyDecision(ctx context.Context, l *entity.Lead) error
	SendReminder(ctx context.Context, contactID string) error
}

// RejectionStateStore tracks reviewers who picked "other" as a rejection
// reason and still owe free text. Keyed by reviewer identity; an entry is only
// ever replaced by a newer decision attempt.
type RejectionStateStore interface {
	Set(deciderID, leadID string)
	Get(deciderID string) (leadID string, ok bool)
	Clear(deciderID string)
}

// Clock is injected where scheduling math depends on the current time.
type Clock func() time.Time
