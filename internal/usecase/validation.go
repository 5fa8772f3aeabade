package usecase

import (
	"fmt"
	"strings"

	"github.com/davronx1/leadgate/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validCompleteness = map[string]entity.LeadStatus{
	string(entity.StatusPartial):             entity.StatusPartial,
	string(entity.StatusFull):                entity.StatusFull,
	string(entity.StatusFullWithoutTelegram): entity.StatusFullWithoutTelegram,
	string(entity.StatusAbandoned):           entity.StatusAbandoned,
}

var validLocales = map[string]bool{"uz": true, "ru": true, "en": true}

func ValidateSubmitLeadInput(input SubmitLeadInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Location) == "" {
		errs = append(errs, ValidationError{"location", "is required"})
	}

	if strings.TrimSpace(input.FullName) == "" {
		errs = append(errs, ValidationError{"full_name", "is required"})
	} else if len(input.FullName) > 200 {
		errs = append(errs, ValidationError{"full_name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errs = append(errs, ValidationError{"phone", "is required"})
	} else if digitCount(input.Phone) < 7 {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}

	if _, ok := validCompleteness[input.Completeness]; !ok {
		errs = append(errs, ValidationError{"status", "must be PARTIAL, FULL, FULL_WITHOUT_TELEGRAM or DID_NOT_CLICK_SUBMIT_BUTTON"})
	}

	if input.Locale != "" && !validLocales[input.Locale] {
		errs = append(errs, ValidationError{"locale", "must be uz, ru or en"})
	}

	return errs
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}
