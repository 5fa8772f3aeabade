package entity

import "time"

// ReminderState tracks channel-join reminders for a contact. At most one row
// per contact. Once HasJoined is true, NextDueAt must be nil.
type ReminderState struct {
	ContactID  string     `json:"contact_id"`
	Count      int        `json:"reminder_count"`
	HasJoined  bool       `json:"has_joined"`
	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
	NextDueAt  *time.Time `json:"next_due_at,omitempty"`
	JoinedAt   *time.Time `json:"joined_at,omitempty"`
}
