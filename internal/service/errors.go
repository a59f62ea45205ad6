package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrNotAvailable  = errors.New("room is not available for the selected dates")
	ErrInvalidStatus = errors.New("invalid room status")
)

// InputError carries per-field validation messages. Nothing is written when
// an operation returns one.
type InputError struct {
	fields map[string][]string
	cause  error
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) withCause(err error) *InputError {
	ie.cause = err
	return ie
}

func (ie *InputError) Error() string {
	keys := make([]string, 0, len(ie.fields))
	for k := range ie.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(ie.fields[k], ", ")))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (ie *InputError) Unwrap() error {
	return ie.cause
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
