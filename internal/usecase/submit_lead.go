package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
	"github.com/davronx1/leadgate/internal/phone"
)

// Bounded retry for unique-violation races: another request created or
// claimed the identity first, so re-resolve and merge instead of failing.
const maxConflictRetries = 3

type SubmitLeadUseCase struct {
	Store    Store
	Notifier Notifier
	// BotURL is the public bot link; the deep-link start parameter carries the
	// lead id so the chat session can be reconciled with this submission.
	BotURL string
}

func NewSubmitLeadUseCase(store Store, notifier Notifier, botURL string) *SubmitLeadUseCase {
	return &SubmitLeadUseCase{Store: store, Notifier: notifier, BotURL: botURL}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	if errs := ValidateSubmitLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	normalized := phone.Normalize(input.Phone)

	var (
		lead   *entity.Lead
		status entity.LeadStatus
		merged bool
	)

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := uc.Store.WithinTx(ctx, func(tx Store) error {
			contact, res, err := resolveOrCreateContact(ctx, tx, normalized, input)
			if err != nil {
				return err
			}
			merged = res.Kind == ResolutionConflict

			status = initialStatus(input.Completeness, res.IsReturning)
			lead = buildLead(contact.ID, normalized, status, input)
			return tx.Leads().Create(ctx, lead)
		})
		if err == nil {
			lastErr = nil
			break
		}
		if errors.Is(err, entity.ErrPhoneTaken) || errors.Is(err, entity.ErrTelegramIDTaken) {
			log.Printf("[submitLead] identity claimed concurrently, re-resolving (attempt %d)", attempt+1)
			lastErr = err
			continue
		}
		return nil, mapStoreError(err)
	}
	if lastErr != nil {
		return nil, &TechnicalError{
			Code:    CodeConflictRetries,
			Message: "could not resolve identity after concurrent updates: " + lastErr.Error(),
		}
	}

	out := &SubmitLeadOutput{
		LeadID:    lead.ID,
		ContactID: lead.ContactID,
		Status:    status,
		Merged:    merged,
	}

	// The review post is fire-and-forget: a failed post must never undo a
	// successful submission.
	if status != entity.StatusPartial {
		if status == entity.StatusFull || status == entity.StatusReturning {
			if uc.BotURL != "" {
				out.BotURL = fmt.Sprintf("%s?start=%s", uc.BotURL, lead.ID)
			}
		}
		postLead := *lead
		go func() {
			if err := uc.Notifier.PostForReview(context.Background(), &postLead); err != nil {
				log.Printf("[submitLead] failed to post lead %s for review: %v", postLead.ID, err)
			}
		}()
	}

	return out, nil
}

// resolveOrCreateContact resolves the submitted identity and leaves exactly
// one contact owning it, merging duplicates when both channels matched
// different records.
func resolveOrCreateContact(ctx context.Context, tx Store, normalizedPhone string, input SubmitLeadInput) (*entity.Contact, *Resolution, error) {
	res, err := ResolveIdentity(ctx, tx, normalizedPhone, input.TelegramID)
	if err != nil {
		return nil, nil, err
	}

	switch res.Kind {
	case ResolutionNew:
		contact := entity.NewContact(normalizedPhone, input.Locale)
		applyTelegramIdentity(contact, input)
		if err := tx.Contacts().Create(ctx, contact); err != nil {
			return nil, nil, err
		}
		return contact, res, nil

	case ResolutionConflict:
		winnerID, loserID, err := pickMergeWinner(ctx, tx, res.ByPhone, res.ByTelegram)
		if err != nil {
			return nil, nil, err
		}
		contact, err := MergeContacts(ctx, tx, loserID, winnerID)
		if err != nil {
			return nil, nil, err
		}
		if err := refreshContact(ctx, tx, contact, normalizedPhone, input); err != nil {
			return nil, nil, err
		}
		return contact, res, nil

	default:
		contact := res.Contact
		if err := refreshContact(ctx, tx, contact, normalizedPhone, input); err != nil {
			return nil, nil, err
		}
		return contact, res, nil
	}
}

// refreshContact fills in fields the submission knows better: the real phone
// replaces a placeholder, and chat identity is attached or corrected.
func refreshContact(ctx context.Context, tx Store, contact *entity.Contact, normalizedPhone string, input SubmitLeadInput) error {
	changed := false

	if contact.Phone != normalizedPhone && (contact.HasPlaceholderPhone() || contact.Phone == "") {
		contact.Phone = normalizedPhone
		changed = true
	}
	if input.Locale != "" && contact.Locale != input.Locale {
		contact.Locale = input.Locale
		changed = true
	}
	if input.TelegramID != "" && contact.TelegramID != input.TelegramID {
		applyTelegramIdentity(contact, input)
		changed = true
	}

	if !changed {
		return nil
	}
	contact.UpdatedAt = time.Now()
	return tx.Contacts().Update(ctx, contact)
}

func applyTelegramIdentity(contact *entity.Contact, input SubmitLeadInput) {
	if input.TelegramID == "" {
		return
	}
	contact.TelegramID = input.TelegramID
	contact.TelegramUsername = input.TelegramUsername
	if input.FirstName != "" {
		contact.FirstName = input.FirstName
	}
	if input.LastName != "" {
		contact.LastName = input.LastName
	}
}

// initialStatus applies the one-time creation precedence. A returning contact
// is always tagged RETURNING, even when the caller declared the submission
// full.
func initialStatus(completeness string, isReturning bool) entity.LeadStatus {
	declared := validCompleteness[completeness]
	switch declared {
	case entity.StatusAbandoned, entity.StatusFullWithoutTelegram:
		return declared
	}
	if isReturning {
		return entity.StatusReturning
	}
	return declared
}

func buildLead(contactID, normalizedPhone string, status entity.LeadStatus, input SubmitLeadInput) *entity.Lead {
	lead := entity.NewLead(contactID, status)
	lead.Location = input.Location
	lead.CompanyType = input.CompanyType
	lead.RoleInCompany = input.RoleInCompany
	lead.Interests = input.Interests
	lead.CompanyDescription = input.CompanyDescription
	lead.AnnualTurnover = input.AnnualTurnover
	lead.NumberOfEmployees = input.NumberOfEmployees
	lead.FullName = input.FullName
	lead.Phone = normalizedPhone
	lead.CompanyName = input.CompanyName
	return lead
}

func mapStoreError(err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return notFound(err.Error())
	}
	if IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	return &TechnicalError{Code: CodeDatabaseError, Message: err.Error()}
}
