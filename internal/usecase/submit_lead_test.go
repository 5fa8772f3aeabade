package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davronx1/leadgate/internal/entity"
)

func validSubmitInput() SubmitLeadInput {
	return SubmitLeadInput{
		Location:     "Tashkent",
		FullName:     "Anvar Karimov",
		Phone:        "90 123 45 67",
		Completeness: string(entity.StatusFull),
	}
}

func TestSubmitLeadCreatesContactAndLead(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	uc := NewSubmitLeadUseCase(store, notifier, "https://t.me/acme_bot")

	out, err := uc.Execute(context.Background(), validSubmitInput())
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFull, out.Status)
	assert.Equal(t, "https://t.me/acme_bot?start="+out.LeadID, out.BotURL)
	assert.False(t, out.Merged)

	contact, err := store.Contacts().FindByID(context.Background(), out.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", contact.Phone, "phone is stored canonically")
	assert.Equal(t, "uz", contact.Locale)

	lead, err := store.Leads().FindByID(context.Background(), out.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", lead.Phone)

	assert.Eventually(t, func() bool { return notifier.reviewedCount() == 1 },
		time.Second, 10*time.Millisecond, "full submission is posted for review")
}

func TestSubmitLeadSamePhoneReusesContactAndTagsReturning(t *testing.T) {
	store := newFakeStore()
	uc := NewSubmitLeadUseCase(store, &fakeNotifier{}, "")

	first, err := uc.Execute(context.Background(), validSubmitInput())
	require.NoError(t, err)

	in := validSubmitInput()
	in.Phone = "+998 (90) 123-45-67" // same number, different formatting
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ContactID, second.ContactID)
	assert.Equal(t, entity.StatusReturning, second.Status, "declared FULL is overridden for a returning contact")

	n, err := store.Leads().CountByContactID(context.Background(), first.ContactID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSubmitLeadPartialSkipsReviewAndBotURL(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	uc := NewSubmitLeadUseCase(store, notifier, "https://t.me/acme_bot")

	in := validSubmitInput()
	in.Completeness = string(entity.StatusPartial)

	out, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPartial, out.Status)
	assert.Empty(t, out.BotURL)
	assert.Never(t, func() bool { return notifier.reviewedCount() > 0 },
		100*time.Millisecond, 10*time.Millisecond, "partial submissions are not posted for review")
}

func TestSubmitLeadAbandonedKeepsDeclaredStatus(t *testing.T) {
	store := newFakeStore()
	uc := NewSubmitLeadUseCase(store, &fakeNotifier{}, "")

	// first submission makes the contact a returning one
	_, err := uc.Execute(context.Background(), validSubmitInput())
	require.NoError(t, err)

	in := validSubmitInput()
	in.Completeness = string(entity.StatusAbandoned)
	out, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAbandoned, out.Status, "abandonment wins over the returning override")
}

func TestSubmitLeadConflictMergesContacts(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	phoneContact := seedContact(store, entity.NewContact("+998901234567", "uz"))
	seedLead(store, entity.NewLead(phoneContact.ID, entity.StatusFull))

	tgContact := entity.NewContact(entity.PlaceholderPhone("tg-9"), "uz")
	tgContact.TelegramID = "tg-9"
	seedContact(store, tgContact)

	uc := NewSubmitLeadUseCase(store, &fakeNotifier{}, "")

	in := validSubmitInput()
	in.TelegramID = "tg-9"
	in.TelegramUsername = "anvar"

	out, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	assert.True(t, out.Merged)
	assert.Equal(t, phoneContact.ID, out.ContactID, "phone-matched contact wins the merge")

	merged, err := store.Contacts().FindByID(ctx, phoneContact.ID)
	require.NoError(t, err)
	assert.Equal(t, "tg-9", merged.TelegramID)

	_, err = store.Contacts().FindByID(ctx, tgContact.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSubmitLeadConflictTelegramSideWins(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	phoneContact := seedContact(store, entity.NewContact("+998901234567", "uz"))

	tgContact := entity.NewContact(entity.PlaceholderPhone("tg-9"), "uz")
	tgContact.TelegramID = "tg-9"
	seedContact(store, tgContact)
	seedLead(store, entity.NewLead(tgContact.ID, entity.StatusFull))
	seedLead(store, entity.NewLead(tgContact.ID, entity.StatusReturning))

	uc := NewSubmitLeadUseCase(store, &fakeNotifier{}, "")

	in := validSubmitInput()
	in.TelegramID = "tg-9"

	out, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	assert.True(t, out.Merged)
	assert.Equal(t, tgContact.ID, out.ContactID, "side with more leads wins")
	assert.Equal(t, entity.StatusReturning, out.Status)

	merged, err := store.Contacts().FindByID(ctx, tgContact.ID)
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", merged.Phone, "real phone replaces the winner's placeholder")
	assert.False(t, merged.HasPlaceholderPhone())

	_, err = store.Contacts().FindByID(ctx, phoneContact.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	n, err := store.Leads().CountByContactID(ctx, tgContact.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "two prior leads plus the new submission")
}

func TestSubmitLeadReplacesPlaceholderPhone(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	tgContact := entity.NewContact(entity.PlaceholderPhone("tg-9"), "uz")
	tgContact.TelegramID = "tg-9"
	seedContact(store, tgContact)

	uc := NewSubmitLeadUseCase(store, &fakeNotifier{}, "")

	in := validSubmitInput()
	in.TelegramID = "tg-9"

	out, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	contact, err := store.Contacts().FindByID(ctx, out.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", contact.Phone)
	assert.False(t, contact.HasPlaceholderPhone())
}

func TestSubmitLeadValidationFailure(t *testing.T) {
	uc := NewSubmitLeadUseCase(newFakeStore(), &fakeNotifier{}, "")

	in := validSubmitInput()
	in.Phone = ""
	in.Location = ""

	_, err := uc.Execute(context.Background(), in)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Contains(t, de.Message, "phone")
	assert.Contains(t, de.Message, "location")
}

func TestSubmitLeadRejectsUnknownCompleteness(t *testing.T) {
	uc := NewSubmitLeadUseCase(newFakeStore(), &fakeNotifier{}, "")

	in := validSubmitInput()
	in.Completeness = "ACCEPTED" // decision statuses are not valid at creation

	_, err := uc.Execute(context.Background(), in)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
}
