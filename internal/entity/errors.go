package entity

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// unique-constraint violations surfaced by the repositories
	ErrPhoneTaken      = errors.New("phone already belongs to another contact")
	ErrTelegramIDTaken = errors.New("telegram id already belongs to another contact")
)
