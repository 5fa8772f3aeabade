package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultLocale = "uz"

// placeholder phones satisfy the unique constraint for contacts created from a
// chat session before a real phone is known
const placeholderPrefix = "temp_"

// Contact is the canonical identity record for one person. At most one contact
// owns a given phone, and at most one owns a given telegram id.
type Contact struct {
	ID               string    `json:"id"`
	Phone            string    `json:"phone"`
	TelegramID       string    `json:"telegram_id,omitempty"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	FirstName        string    `json:"first_name,omitempty"`
	LastName         string    `json:"last_name,omitempty"`
	Locale           string    `json:"locale"`
	ChannelJoined    bool      `json:"channel_joined"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewContact(phone, locale string) *Contact {
	if locale == "" {
		locale = DefaultLocale
	}
	now := time.Now()
	return &Contact{
		ID:        uuid.New().String(),
		Phone:     phone,
		Locale:    locale,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PlaceholderPhone builds the temporary phone for a chat-created contact.
func PlaceholderPhone(telegramID string) string {
	return placeholderPrefix + telegramID
}

func (c *Contact) HasPlaceholderPhone() bool {
	return strings.HasPrefix(c.Phone, placeholderPrefix)
}
