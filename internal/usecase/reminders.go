package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
)

// The first reminders go out after 3, 5, 7, 9 and 13 days; past the base
// ladder the gap keeps growing: 19, 27, 37, 49, ...
var baseReminderIntervals = [...]int{3, 5, 7, 9, 13}

// reminderIntervalDays returns the gap in days applied after the n-th
// reminder (0-indexed). Generated lazily, unbounded.
func reminderIntervalDays(n int) int {
	if n < 0 {
		n = 0
	}
	if n < len(baseReminderIntervals) {
		return baseReminderIntervals[n]
	}
	last := baseReminderIntervals[len(baseReminderIntervals)-1]
	increment := 6
	for i := len(baseReminderIntervals); i <= n; i++ {
		last += increment
		increment += 2
	}
	return last
}

// ReminderScheduler tracks which contacts still owe the channel-join action
// and when they should next be nudged. It never talks to the transport that
// delivers a reminder.
type ReminderScheduler struct {
	Store Store
	Now   Clock
}

func NewReminderScheduler(store Store) *ReminderScheduler {
	return &ReminderScheduler{Store: store, Now: time.Now}
}

// ScheduleFirst makes the contact immediately eligible for a reminder.
// Idempotent: an existing state only gets its next-due reset, count and the
// completed flag are preserved. A completed goal stays completed, so this is
// a no-op after the contact joined.
func (s *ReminderScheduler) ScheduleFirst(ctx context.Context, contactID string) error {
	now := s.Now()

	rem, err := s.Store.Reminders().FindByContactID(ctx, contactID)
	if errors.Is(err, entity.ErrNotFound) {
		return s.Store.Reminders().Upsert(ctx, &entity.ReminderState{
			ContactID: contactID,
			NextDueAt: &now,
		})
	}
	if err != nil {
		return mapStoreError(err)
	}

	if rem.HasJoined {
		return nil
	}
	rem.NextDueAt = &now
	return s.Store.Reminders().Upsert(ctx, rem)
}

// DueSet returns the contacts whose next reminder time has arrived and who
// have not joined the channel.
func (s *ReminderScheduler) DueSet(ctx context.Context) ([]string, error) {
	ids, err := s.Store.Reminders().DueContactIDs(ctx, s.Now())
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ids, nil
}

// MarkSent records a delivered reminder: bumps the count and schedules the
// next one using the interval the ladder assigns to the reminder just sent.
// No-op when no state exists or the goal is already completed.
func (s *ReminderScheduler) MarkSent(ctx context.Context, contactID string) error {
	rem, err := s.Store.Reminders().FindByContactID(ctx, contactID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return mapStoreError(err)
	}
	if rem.HasJoined {
		return nil
	}

	now := s.Now()
	interval := reminderIntervalDays(rem.Count)
	rem.Count++
	rem.LastSentAt = &now
	next := now.AddDate(0, 0, interval)
	rem.NextDueAt = &next

	return s.Store.Reminders().Upsert(ctx, rem)
}

// MarkGoalCompleted permanently stops reminders for the contact and records
// the join on the contact itself. Idempotent; re-completion is a no-op.
func (s *ReminderScheduler) MarkGoalCompleted(ctx context.Context, contactID string) error {
	now := s.Now()
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		if err := tx.Reminders().CompleteGoal(ctx, contactID, now); err != nil {
			return err
		}
		contact, err := tx.Contacts().FindByID(ctx, contactID)
		if errors.Is(err, entity.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if contact.ChannelJoined {
			return nil
		}
		contact.ChannelJoined = true
		contact.UpdatedAt = now
		return tx.Contacts().Update(ctx, contact)
	})
	if err != nil {
		return mapStoreError(err)
	}
	return nil
}
