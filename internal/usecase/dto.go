package usecase

import "github.com/davronx1/leadgate/internal/entity"

type SubmitLeadInput struct {
	Location           string   `json:"location"`
	CompanyType        string   `json:"company_type,omitempty"`
	RoleInCompany      string   `json:"role_in_company,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	CompanyDescription string   `json:"company_description,omitempty"`
	AnnualTurnover     string   `json:"annual_turnover,omitempty"`
	NumberOfEmployees  string   `json:"number_of_employees,omitempty"`
	FullName           string   `json:"full_name"`
	Phone              string   `json:"phone"`
	CompanyName        string   `json:"company_name,omitempty"`
	Locale             string   `json:"locale,omitempty"`

	// Caller-declared completeness: PARTIAL, FULL, FULL_WITHOUT_TELEGRAM or
	// DID_NOT_CLICK_SUBMIT_BUTTON.
	Completeness string `json:"status"`

	// Chat identity, present when the submission arrives through a bot
	// session instead of the bare web form.
	TelegramID       string `json:"telegram_id,omitempty"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
}

type SubmitLeadOutput struct {
	LeadID    string            `json:"id"`
	ContactID string            `json:"contact_id"`
	Status    entity.LeadStatus `json:"status"`
	BotURL    string            `json:"telegram_bot_url,omitempty"`
	Merged    bool              `json:"-"`
}

type LinkIdentityInput struct {
	// Key is either a handoff session key (pending web submission) or a lead
	// id from the bot deep link.
	Key              string
	TelegramID       string
	TelegramUsername string
	FirstName        string
	LastName         string
}

type DecideLeadInput struct {
	LeadID    string
	Outcome   entity.LeadStatus // StatusAccepted or StatusRejected
	DeciderID string
	// ReasonCode is one of the predefined rejection codes; ReasonText carries
	// free text for the "other" code.
	ReasonCode string
	ReasonText string
}

type DecideLeadOutput struct {
	Lead *entity.Lead
	// AwaitingReason is true when the reviewer chose "other" and must supply
	// free text before the rejection is applied.
	AwaitingReason bool
}
