package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
	"github.com/davronx1/leadgate/internal/handoff"
)

// LinkIdentityUseCase reconciles a chat identity with an earlier web
// submission. The key is either a handoff session key, in which case the
// pending submission is completed now under the chat identity, or a lead id
// from the bot deep link, in which case the lead's contact gains the chat
// identity (merging if the identity already owns a different contact).
type LinkIdentityUseCase struct {
	Store     Store
	Handoff   handoff.Store
	Submit    *SubmitLeadUseCase
	Notifier  Notifier
	Reminders *ReminderScheduler
}

func NewLinkIdentityUseCase(store Store, hs handoff.Store, submit *SubmitLeadUseCase, notifier Notifier, reminders *ReminderScheduler) *LinkIdentityUseCase {
	return &LinkIdentityUseCase{
		Store:     store,
		Handoff:   hs,
		Submit:    submit,
		Notifier:  notifier,
		Reminders: reminders,
	}
}

func (uc *LinkIdentityUseCase) Execute(ctx context.Context, input LinkIdentityInput) (*entity.Contact, error) {
	if input.TelegramID == "" {
		return nil, invalid("telegram_id is required")
	}
	if input.Key == "" {
		return nil, invalid("key is required")
	}

	payload, ok, err := uc.Handoff.Take(ctx, input.Key)
	if err != nil {
		log.Printf("[linkIdentity] handoff lookup failed for key %s: %v", input.Key, err)
	}
	if ok {
		return uc.completePendingSubmission(ctx, payload, input)
	}
	return uc.linkByLeadID(ctx, input)
}

// completePendingSubmission finishes a web submission that was parked in the
// handoff store, now carrying the chat identity.
func (uc *LinkIdentityUseCase) completePendingSubmission(ctx context.Context, payload []byte, input LinkIdentityInput) (*entity.Contact, error) {
	var submission SubmitLeadInput
	if err := json.Unmarshal(payload, &submission); err != nil {
		return nil, invalid("pending submission payload is malformed")
	}
	submission.TelegramID = input.TelegramID
	submission.TelegramUsername = input.TelegramUsername
	submission.FirstName = input.FirstName
	submission.LastName = input.LastName
	if submission.Completeness == "" || submission.Completeness == string(entity.StatusPartial) {
		submission.Completeness = string(entity.StatusFull)
	}

	out, err := uc.Submit.Execute(ctx, submission)
	if err != nil {
		return nil, err
	}

	contact, err := uc.Store.Contacts().FindByID(ctx, out.ContactID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	uc.scheduleFirstReminder(ctx, contact)
	return contact, nil
}

// linkByLeadID treats the key as a lead id from the bot deep link.
func (uc *LinkIdentityUseCase) linkByLeadID(ctx context.Context, input LinkIdentityInput) (*entity.Contact, error) {
	var (
		contact *entity.Contact
		lead    *entity.Lead
	)

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := uc.Store.WithinTx(ctx, func(tx Store) error {
			var err error
			lead, err = tx.Leads().FindByID(ctx, input.Key)
			if errors.Is(err, entity.ErrNotFound) {
				return notFound("lead " + input.Key + " not found")
			}
			if err != nil {
				return err
			}

			owner, err := tx.Contacts().FindByID(ctx, lead.ContactID)
			if err != nil {
				return err
			}

			byTelegram, err := tx.Contacts().FindByTelegramID(ctx, input.TelegramID)
			if err != nil && !errors.Is(err, entity.ErrNotFound) {
				return err
			}

			if byTelegram != nil && byTelegram.ID != owner.ID {
				// The chat identity already owns a different contact: same
				// person reached us through both channels. The lead's owner
				// counts as the phone-matched side.
				winnerID, loserID, err := pickMergeWinner(ctx, tx, owner, byTelegram)
				if err != nil {
					return err
				}
				contact, err = MergeContacts(ctx, tx, loserID, winnerID)
				if err != nil {
					return err
				}
			} else {
				contact = owner
			}

			if contact.TelegramID != input.TelegramID {
				contact.TelegramID = input.TelegramID
				contact.TelegramUsername = input.TelegramUsername
				if input.FirstName != "" {
					contact.FirstName = input.FirstName
				}
				if input.LastName != "" {
					contact.LastName = input.LastName
				}
				contact.UpdatedAt = time.Now()
				if err := tx.Contacts().Update(ctx, contact); err != nil {
					return err
				}
			} else if input.TelegramUsername != "" && contact.TelegramUsername != input.TelegramUsername {
				contact.TelegramUsername = input.TelegramUsername
				contact.UpdatedAt = time.Now()
				if err := tx.Contacts().Update(ctx, contact); err != nil {
					return err
				}
			}

			// The merge may have moved the lead to the surviving contact; the
			// struct in hand predates that and must not write the old owner
			// back.
			if lead.ContactID != contact.ID {
				lead.ContactID = contact.ID
			}

			// Supplying the chat link completes a partial submission.
			if lead.Status == entity.StatusPartial && lead.Status.CanTransitionTo(entity.StatusFull) {
				lead.Status = entity.StatusFull
				lead.UpdatedAt = time.Now()
				if err := tx.Leads().Update(ctx, lead); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			lastErr = nil
			break
		}
		if errors.Is(err, entity.ErrTelegramIDTaken) || errors.Is(err, entity.ErrPhoneTaken) {
			log.Printf("[linkIdentity] identity claimed concurrently, re-resolving (attempt %d)", attempt+1)
			lastErr = err
			continue
		}
		return nil, mapStoreError(err)
	}
	if lastErr != nil {
		return nil, &TechnicalError{
			Code:    CodeConflictRetries,
			Message: "could not link identity after concurrent updates: " + lastErr.Error(),
		}
	}

	if lead.TelegramChatID != "" {
		updated := *lead
		go func() {
			if err := uc.Notifier.UpdateReviewMessage(context.Background(), &updated); err != nil {
				log.Printf("[linkIdentity] failed to refresh review message for lead %s: %v", updated.ID, err)
			}
		}()
	}

	uc.scheduleFirstReminder(ctx, contact)
	return contact, nil
}

func (uc *LinkIdentityUseCase) scheduleFirstReminder(ctx context.Context, contact *entity.Contact) {
	if contact.ChannelJoined {
		return
	}
	if err := uc.Reminders.ScheduleFirst(ctx, contact.ID); err != nil {
		log.Printf("[linkIdentity] failed to schedule reminder for contact %s: %v", contact.ID, err)
	}
}
