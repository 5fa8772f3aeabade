package usecase

// DomainError is a refused request: the caller did something that cannot be
// honored (bad input, missing record, stale decision).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError is an infrastructure failure. The whole unit of work is safe
// to retry.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeAlreadyDecided  = "ALREADY_DECIDED"
	CodeInvalidState    = "INVALID_STATE"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeConflictRetries = "CONFLICT_RETRIES_EXHAUSTED"
)

func notFound(msg string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func invalid(msg string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: msg}
}
