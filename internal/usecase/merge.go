package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
)

// MergeContacts consolidates two contacts known to represent the same person.
// The loser's dependent records move to the winner and the loser is deleted.
// Must run inside a transaction: the caller passes the tx-bound Store.
func MergeContacts(ctx context.Context, tx Store, loserID, winnerID string) (*entity.Contact, error) {
	if loserID == winnerID {
		return tx.Contacts().FindByID(ctx, winnerID)
	}

	loser, err := tx.Contacts().FindByID(ctx, loserID)
	if err != nil {
		return nil, fmt.Errorf("merge: load loser %s: %w", loserID, err)
	}
	winner, err := tx.Contacts().FindByID(ctx, winnerID)
	if err != nil {
		return nil, fmt.Errorf("merge: load winner %s: %w", winnerID, err)
	}

	// Phone: keep the winner's unless it is a placeholder assigned before a
	// real phone was known. The loser row still owns the promoted phone, so
	// it is parked on a fresh placeholder first; the winner update would trip
	// the phone uniqueness constraint otherwise.
	if winner.HasPlaceholderPhone() {
		promoted := loser.Phone
		loser.Phone = entity.PlaceholderPhone(loser.ID)
		if err := tx.Contacts().Update(ctx, loser); err != nil {
			return nil, fmt.Errorf("merge: retire loser phone: %w", err)
		}
		winner.Phone = promoted
	}

	// Telegram identity: keep the winner's when present. When the loser's id
	// is being promoted it must be cleared from the loser first, otherwise
	// the winner update trips the uniqueness constraint mid-transaction.
	if winner.TelegramID == "" && loser.TelegramID != "" {
		promotedID := loser.TelegramID
		promotedUsername := loser.TelegramUsername
		loser.TelegramID = ""
		loser.TelegramUsername = ""
		if err := tx.Contacts().Update(ctx, loser); err != nil {
			return nil, fmt.Errorf("merge: clear loser telegram id: %w", err)
		}
		winner.TelegramID = promotedID
		winner.TelegramUsername = promotedUsername
	} else if winner.TelegramUsername == "" {
		winner.TelegramUsername = loser.TelegramUsername
	}

	if winner.FirstName == "" {
		winner.FirstName = loser.FirstName
	}
	if winner.LastName == "" {
		winner.LastName = loser.LastName
	}
	if winner.Locale == "" {
		winner.Locale = loser.Locale
	}
	if winner.Locale == "" {
		winner.Locale = entity.DefaultLocale
	}
	// Completing the goal once is permanent.
	winner.ChannelJoined = winner.ChannelJoined || loser.ChannelJoined
	winner.UpdatedAt = time.Now()

	if err := tx.Contacts().Update(ctx, winner); err != nil {
		return nil, fmt.Errorf("merge: update winner: %w", err)
	}

	moved, err := tx.Leads().ReassignContact(ctx, loser.ID, winner.ID)
	if err != nil {
		return nil, fmt.Errorf("merge: reassign leads: %w", err)
	}
	log.Printf("[merge] moved %d lead(s) from %s to %s", moved, loser.ID, winner.ID)

	if err := mergeReminderState(ctx, tx, loser.ID, winner.ID); err != nil {
		return nil, err
	}

	if err := tx.Contacts().Delete(ctx, loser.ID); err != nil {
		return nil, fmt.Errorf("merge: delete loser: %w", err)
	}

	return winner, nil
}

func mergeReminderState(ctx context.Context, tx Store, loserID, winnerID string) error {
	loserRem, err := tx.Reminders().FindByContactID(ctx, loserID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("merge: load loser reminder: %w", err)
	}

	winnerRem, err := tx.Reminders().FindByContactID(ctx, winnerID)
	if errors.Is(err, entity.ErrNotFound) {
		// Only the loser has state: move it over.
		if err := tx.Reminders().Reassign(ctx, loserID, winnerID); err != nil {
			return fmt.Errorf("merge: reassign reminder: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("merge: load winner reminder: %w", err)
	}

	if loserRem.Count > winnerRem.Count {
		winnerRem.Count = loserRem.Count
	}
	winnerRem.HasJoined = winnerRem.HasJoined || loserRem.HasJoined
	winnerRem.LastSentAt = earliestTime(winnerRem.LastSentAt, loserRem.LastSentAt)
	winnerRem.JoinedAt = earliestTime(winnerRem.JoinedAt, loserRem.JoinedAt)
	winnerRem.NextDueAt = latestTime(winnerRem.NextDueAt, loserRem.NextDueAt)
	if winnerRem.HasJoined {
		// invariant: a completed goal never has a pending reminder
		winnerRem.NextDueAt = nil
	}

	if err := tx.Reminders().Upsert(ctx, winnerRem); err != nil {
		return fmt.Errorf("merge: upsert merged reminder: %w", err)
	}
	if err := tx.Reminders().Delete(ctx, loserID); err != nil {
		return fmt.Errorf("merge: delete loser reminder: %w", err)
	}
	return nil
}

func earliestTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Before(*a) {
		return b
	}
	return a
}

func latestTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.After(*a) {
		return b
	}
	return a
}

// pickMergeWinner applies the caller-side conflict rule: the candidate with
// more leads wins, ties favor the phone match.
func pickMergeWinner(ctx context.Context, tx Store, byPhone, byTelegram *entity.Contact) (winnerID, loserID string, err error) {
	phoneLeads, err := tx.Leads().CountByContactID(ctx, byPhone.ID)
	if err != nil {
		return "", "", err
	}
	tgLeads, err := tx.Leads().CountByContactID(ctx, byTelegram.ID)
	if err != nil {
		return "", "", err
	}
	if tgLeads > phoneLeads {
		return byTelegram.ID, byPhone.ID, nil
	}
	return byPhone.ID, byTelegram.ID, nil
}
