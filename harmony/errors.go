package harmony

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNote matches any *UnknownNoteError via errors.Is.
	ErrUnknownNote = errors.New("unknown note")
	// ErrInvalidConfiguration matches any *InvalidConfigurationError via errors.Is.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// UnknownNoteError reports a label that is not part of the vocabulary.
type UnknownNoteError struct {
	Label string
}

func (e *UnknownNoteError) Error() string {
	return fmt.Sprintf("unknown note %q", e.Label)
}

func (e *UnknownNoteError) Is(target error) bool {
	return target == ErrUnknownNote
}

// InvalidConfigurationError reports a rejected search or vocabulary setting.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

func invalid(field, format string, args ...any) error {
	return &InvalidConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
