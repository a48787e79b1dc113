package model

import "fmt"

// DomainError represents a domain error shared by task and user flows.
type DomainError struct {
	Message string
}

func (e DomainError) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound         = DomainError{Message: "task not found"}
	ErrTitleRequired        = DomainError{Message: "title is required"}
	ErrInvalidPriority      = DomainError{Message: `priority can only be "low", "medium", or "high"`}
	ErrUnsupportedAttribute = DomainError{Message: "unsupported search attribute"}
	ErrInvalidPagination    = DomainError{Message: "page and size must be greater than zero"}
	ErrInvalidOrderBy       = DomainError{Message: "order_by must be one of title, description, status, priority"}
	ErrAuthenticationFailed = DomainError{Message: "invalid username or password"}
	ErrTokenInvalid         = DomainError{Message: "token is invalid"}
	ErrTokenExpired         = DomainError{Message: "token has expired"}
	ErrStoreUnavailable     = DomainError{Message: "store unavailable"}
)

// DuplicateError reports a uniqueness violation during registration. Field
// names the conflicting column when it can be derived from the store error,
// otherwise it is empty.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "an identity field is already taken"
	}
	return fmt.Sprintf("the %s is already taken", e.Field)
}
