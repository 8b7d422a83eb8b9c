package account

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("account: not found")
	ErrDuplicateName      = errors.New("account: username already taken")
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	ErrInvalidRole        = errors.New("account: invalid role")
	ErrSelfModification   = errors.New("account: operation may not target the acting account")
	ErrForbidden          = errors.New("account: forbidden")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError aggregates field-level input failures. It is recoverable
// at the request boundary and maps to a 400 response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "account: invalid input"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Error))
	}
	return "account: invalid input: " + strings.Join(parts, "; ")
}
