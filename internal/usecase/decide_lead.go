package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
)

// Predefined rejection reason codes offered to reviewers. "other" requires a
// free-text follow-up before the rejection is applied.
const ReasonOther = "other"

var rejectionReasons = map[string]string{
	"incomplete":    "Incomplete information",
	"not_qualified": "Not qualified",
	"duplicate":     "Duplicate application",
}

type DecideLeadUseCase struct {
	Store      Store
	Notifier   Notifier
	Rejections RejectionStateStore
	Reminders  *ReminderScheduler
}

func NewDecideLeadUseCase(store Store, notifier Notifier, rejections RejectionStateStore, reminders *ReminderScheduler) *DecideLeadUseCase {
	return &DecideLeadUseCase{
		Store:      store,
		Notifier:   notifier,
		Rejections: rejections,
		Reminders:  reminders,
	}
}

func (uc *DecideLeadUseCase) Execute(ctx context.Context, input DecideLeadInput) (*DecideLeadOutput, error) {
	if input.Outcome != entity.StatusAccepted && input.Outcome != entity.StatusRejected {
		return nil, invalid("outcome must be ACCEPTED or REJECTED")
	}
	if input.DeciderID == "" {
		return nil, invalid("decider identity is required")
	}

	lead, err := uc.Store.Leads().FindByID(ctx, input.LeadID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("lead " + input.LeadID + " not found")
	}
	if err != nil {
		return nil, mapStoreError(err)
	}

	if lead.Status.Decided() {
		return nil, &DomainError{Code: CodeAlreadyDecided, Message: "lead has already been decided"}
	}
	if !lead.Status.CanTransitionTo(input.Outcome) {
		return nil, &DomainError{Code: CodeInvalidState, Message: "lead in status " + string(lead.Status) + " cannot be decided"}
	}

	var reason string
	if input.Outcome == entity.StatusRejected {
		reason, err = uc.resolveRejectionReason(input)
		if err != nil {
			return nil, err
		}
		if reason == "" {
			// "other" without text: remember that this reviewer owes a
			// reason and leave the lead untouched. Overwritten by any newer
			// decision attempt from the same reviewer.
			uc.Rejections.Set(input.DeciderID, lead.ID)
			return &DecideLeadOutput{Lead: lead, AwaitingReason: true}, nil
		}
	}

	lead.Status = input.Outcome
	lead.DecidedBy = input.DeciderID
	lead.RejectionReason = reason
	lead.UpdatedAt = time.Now()

	if err := uc.Store.Leads().Update(ctx, lead); err != nil {
		return nil, mapStoreError(err)
	}

	// A decision attempt that went through supersedes any pending free-text
	// state for this reviewer.
	uc.Rejections.Clear(input.DeciderID)

	uc.afterDecision(ctx, lead)

	return &DecideLeadOutput{Lead: lead}, nil
}

// CompleteRejection finishes an "other" rejection once the reviewer sent the
// free-text reason.
func (uc *DecideLeadUseCase) CompleteRejection(ctx context.Context, deciderID, freeText string) (*DecideLeadOutput, error) {
	leadID, ok := uc.Rejections.Get(deciderID)
	if !ok {
		return nil, notFound("no pending rejection for this reviewer")
	}
	return uc.Execute(ctx, DecideLeadInput{
		LeadID:     leadID,
		Outcome:    entity.StatusRejected,
		DeciderID:  deciderID,
		ReasonText: freeText,
	})
}

// AwaitingReason reports whether the reviewer owes free text for a pending
// rejection.
func (uc *DecideLeadUseCase) AwaitingReason(deciderID string) bool {
	_, ok := uc.Rejections.Get(deciderID)
	return ok
}

func (uc *DecideLeadUseCase) resolveRejectionReason(input DecideLeadInput) (string, error) {
	if input.ReasonCode == "" && input.ReasonText == "" {
		return "", invalid("rejection requires a reason")
	}
	if input.ReasonCode == "" || input.ReasonCode == ReasonOther {
		// free text path; empty text means the follow-up is still pending
		return input.ReasonText, nil
	}
	reason, ok := rejectionReasons[input.ReasonCode]
	if !ok {
		return "", invalid("unknown rejection reason code: " + input.ReasonCode)
	}
	return reason, nil
}

// afterDecision fires the out-of-transaction side effects: notify the
// submitter, refresh the review message, and start channel reminders when the
// contact has not joined yet. All best-effort.
func (uc *DecideLeadUseCase) afterDecision(ctx context.Context, lead *entity.Lead) {
	decided := *lead
	go func() {
		bg := context.Background()
		if err := uc.Notifier.NotifyDecision(bg, &decided); err != nil {
			log.Printf("[decideLead] failed to notify decision for lead %s: %v", decided.ID, err)
		}
		if decided.TelegramChatID != "" {
			if err := uc.Notifier.UpdateReviewMessage(bg, &decided); err != nil {
				log.Printf("[decideLead] failed to refresh review message for lead %s: %v", decided.ID, err)
			}
		}
	}()

	contact, err := uc.Store.Contacts().FindByID(ctx, lead.ContactID)
	if err != nil {
		log.Printf("[decideLead] failed to load contact %s: %v", lead.ContactID, err)
		return
	}
	if !contact.ChannelJoined {
		if err := uc.Reminders.ScheduleFirst(ctx, contact.ID); err != nil {
			log.Printf("[decideLead] failed to schedule reminder for contact %s: %v", contact.ID, err)
		}
	}
}
