package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLen    = 2
	nameMaxLen    = 50
	messageMinLen = 10
	messageMaxLen = 250
)

// namePattern allows letters, whitespace, hyphens and apostrophes.
var namePattern = regexp.MustCompile(`^[A-Za-z\s'-]+$`)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failing field rule.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateWish trims both fields and checks them. It returns the trimmed
// values when they pass.
func ValidateWish(name, message string) (string, string, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)

	verr := &ValidationError{}

	switch n := utf8.RuneCountInString(name); {
	case n < nameMinLen:
		verr.add("name", "Name must be at least %d characters", nameMinLen)
	case n > nameMaxLen:
		verr.add("name", "Name must be less than %d characters", nameMaxLen)
	}
	if name != "" && !namePattern.MatchString(name) {
		verr.add("name", "Name can only contain letters, spaces, hyphens, and apostrophes")
	}

	switch n := utf8.RuneCountInString(message); {
	case n < messageMinLen:
		verr.add("message", "Message must be at least %d characters", messageMinLen)
	case n > messageMaxLen:
		verr.add("message", "Message must be less than %d characters", messageMaxLen)
	}

	if err := verr.orNil(); err != nil {
		return "", "", err
	}
	return name, message, nil
}
