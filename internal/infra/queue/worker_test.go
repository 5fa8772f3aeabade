package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davronx1/leadgate/internal/entity"
)

func TestFormatLeadCard(t *testing.T) {
	contact := entity.NewContact("+998901234567", "uz")
	contact.TelegramID = "12345"
	contact.TelegramUsername = "anvar"

	lead := entity.NewLead(contact.ID, entity.StatusFull)
	lead.Location = "Tashkent"
	lead.CompanyType = "LLC"
	lead.Interests = []string{"export", "logistics"}
	lead.FullName = "Anvar Karimov"
	lead.Phone = "+998901234567"
	lead.CompanyName = "Acme LLC"

	card := formatLeadCard(lead, contact)

	assert.Contains(t, card, "FULL")
	assert.Contains(t, card, "Tashkent")
	assert.Contains(t, card, "export, logistics")
	assert.Contains(t, card, "Anvar Karimov")
	assert.Contains(t, card, "+998901234567")
	assert.Contains(t, card, "@anvar")
	assert.NotContains(t, card, "Accepted by")
}

func TestFormatLeadCardShowsDecision(t *testing.T) {
	contact := entity.NewContact("+998901234567", "uz")

	lead := entity.NewLead(contact.ID, entity.StatusRejected)
	lead.Location = "Samarkand"
	lead.FullName = "B"
	lead.Phone = "+998907654321"
	lead.DecidedBy = "reviewer-1"
	lead.RejectionReason = "Duplicate application"

	card := formatLeadCard(lead, contact)

	assert.Contains(t, card, "Rejected by: reviewer-1 (Duplicate application)")
}

func TestFormatLeadCardFallsBackToTelegramID(t *testing.T) {
	contact := entity.NewContact("+998901234567", "uz")
	contact.TelegramID = "12345"

	lead := entity.NewLead(contact.ID, entity.StatusFull)
	lead.Location = "Tashkent"
	lead.FullName = "A"
	lead.Phone = "+998901234567"

	card := formatLeadCard(lead, contact)
	assert.Contains(t, card, "@12345")
}
