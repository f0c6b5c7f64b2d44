package generator

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// parseTailLimit bounds how much offending content a ParseError keeps.
const parseTailLimit = 1600

// ConfigError reports a collaborator that cannot be called because it is not configured.
type ConfigError struct {
	Collaborator string
	Reason       string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s not configured: %s", e.Collaborator, e.Reason)
}

// ParseError reports collaborator content that could not be read as the
// structured extraction contract.
type ParseError struct {
	Collaborator string
	Reason       string
	Tail         string
	Err          error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Collaborator, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Tail != "" {
		msg += "\n\nTail:\n" + e.Tail
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// CollaboratorError wraps a transport failure talking to the model.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// tail returns the last parseTailLimit bytes of s, starting on a rune boundary.
func tail(s string) string {
	if len(s) <= parseTailLimit {
		return s
	}
	i := len(s) - parseTailLimit
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
