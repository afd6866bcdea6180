package domain

import (
	"errors"
	"fmt"
)

// ValidationKind identifies the structural problem with an input log.
type ValidationKind int

const (
	NotAMapping ValidationKind = iota
	MissingField
	WrongType
)

// ValidationError reports that an input log failed structural validation.
// Validation errors always surface to the immediate caller; the scorer
// never swallows them.
type ValidationError struct {
	Kind     ValidationKind
	Field    string
	Expected string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NotAMapping:
		return "log must be a keyed structure (JSON object)"
	case MissingField:
		return fmt.Sprintf("required field %q is missing", e.Field)
	case WrongType:
		return fmt.Sprintf("field %q must be a %s", e.Field, e.Expected)
	default:
		return "invalid log structure"
	}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
