package usecase

import (
	"context"
	"errors"

	"github.com/davronx1/leadgate/internal/entity"
)

type ResolutionKind int

const (
	// ResolutionNew: neither lookup hit, a new contact must be created.
	ResolutionNew ResolutionKind = iota
	// ResolutionSinglePhone: only the phone lookup hit.
	ResolutionSinglePhone
	// ResolutionSingleTelegram: only the telegram-id lookup hit.
	ResolutionSingleTelegram
	// ResolutionSameContact: both lookups hit the same contact.
	ResolutionSameContact
	// ResolutionConflict: the lookups hit two different contacts that must be
	// merged before the submission can proceed.
	ResolutionConflict
)

// Resolution classifies an identity against existing contacts. Resolving is
// read-only; the caller performs the create/update/merge it signals.
type Resolution struct {
	Kind       ResolutionKind
	Contact    *entity.Contact // matched contact; preferred merge winner on conflict
	ByPhone    *entity.Contact
	ByTelegram *entity.Contact
	// IsReturning is true when any matched contact already owns a lead.
	IsReturning bool
}

// ResolveIdentity looks up a contact by canonical phone and, when given, by
// telegram id. Runs against whatever Store it is handed, so it composes into
// a surrounding transaction.
func ResolveIdentity(ctx context.Context, s Store, canonicalPhone, telegramID string) (*Resolution, error) {
	byPhone, err := s.Contacts().FindByPhone(ctx, canonicalPhone)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	var byTelegram *entity.Contact
	if telegramID != "" {
		byTelegram, err = s.Contacts().FindByTelegramID(ctx, telegramID)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
	}

	switch {
	case byPhone == nil && byTelegram == nil:
		return &Resolution{Kind: ResolutionNew}, nil

	case byPhone != nil && byTelegram != nil && byPhone.ID == byTelegram.ID:
		returning, err := ownsLeads(ctx, s, byPhone.ID)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        ResolutionSameContact,
			Contact:     byPhone,
			ByPhone:     byPhone,
			ByTelegram:  byTelegram,
			IsReturning: returning,
		}, nil

	case byPhone != nil && byTelegram != nil:
		phoneLeads, err := s.Leads().CountByContactID(ctx, byPhone.ID)
		if err != nil {
			return nil, err
		}
		tgLeads, err := s.Leads().CountByContactID(ctx, byTelegram.ID)
		if err != nil {
			return nil, err
		}
		// More leads wins; ties favor the phone match, which is treated as
		// authoritative for contact purposes.
		preferred := byPhone
		if tgLeads > phoneLeads {
			preferred = byTelegram
		}
		return &Resolution{
			Kind:        ResolutionConflict,
			Contact:     preferred,
			ByPhone:     byPhone,
			ByTelegram:  byTelegram,
			IsReturning: phoneLeads > 0 || tgLeads > 0,
		}, nil

	case byPhone != nil:
		returning, err := ownsLeads(ctx, s, byPhone.ID)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        ResolutionSinglePhone,
			Contact:     byPhone,
			ByPhone:     byPhone,
			IsReturning: returning,
		}, nil

	default:
		returning, err := ownsLeads(ctx, s, byTelegram.ID)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        ResolutionSingleTelegram,
			Contact:     byTelegram,
			ByTelegram:  byTelegram,
			IsReturning: returning,
		}, nil
	}
}

func ownsLeads(ctx context.Context, s Store, contactID string) (bool, error) {
	n, err := s.Leads().CountByContactID(ctx, contactID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
