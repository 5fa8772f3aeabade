package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	StatusPartial             LeadStatus = "PARTIAL"
	StatusFull                LeadStatus = "FULL"
	StatusFullWithoutTelegram LeadStatus = "FULL_WITHOUT_TELEGRAM"
	StatusReturning           LeadStatus = "RETURNING"
	StatusAccepted            LeadStatus = "ACCEPTED"
	StatusRejected            LeadStatus = "REJECTED"
	StatusAbandoned           LeadStatus = "DID_NOT_CLICK_SUBMIT_BUTTON"
)

// Decided reports whether a reviewer has already ruled on the lead.
func (s LeadStatus) Decided() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Terminal statuses accept no further transitions.
func (s LeadStatus) Terminal() bool {
	return s.Decided() || s == StatusAbandoned
}

// CanTransitionTo encodes the lifecycle state machine. Illegal transitions are
// rejected here instead of by caller convention.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	switch s {
	case StatusPartial:
		return next == StatusFull
	case StatusFull, StatusFullWithoutTelegram, StatusReturning:
		return next == StatusAccepted || next == StatusRejected
	default:
		return false
	}
}

// Lead is one form submission instance, owned by exactly one Contact. Form
// fields are copied at submission time, not live-joined to the contact.
type Lead struct {
	ID                 string     `json:"id"`
	ContactID          string     `json:"contact_id"`
	Location           string     `json:"location"`
	CompanyType        string     `json:"company_type,omitempty"`
	RoleInCompany      string     `json:"role_in_company,omitempty"`
	Interests          []string   `json:"interests,omitempty"`
	CompanyDescription string     `json:"company_description,omitempty"`
	AnnualTurnover     string     `json:"annual_turnover,omitempty"`
	NumberOfEmployees  string     `json:"number_of_employees,omitempty"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	CompanyName        string     `json:"company_name,omitempty"`
	Status             LeadStatus `json:"status"`

	DecidedBy       string `json:"decided_by,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	// Review message linkage, set once the lead is posted to the sales group.
	// Never cleared after that.
	TelegramChatID    string `json:"telegram_chat_id,omitempty"`
	TelegramMessageID int64  `json:"telegram_message_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLead(contactID string, status LeadStatus) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		ContactID: contactID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
