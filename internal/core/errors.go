package core

import (
	"errors"
	"fmt"
)

// Rule identifies which local check a ValidationError comes from.
type Rule string

const (
	RuleMissingIdentifier Rule = "missing_identifier"
	RuleMissingTask       Rule = "missing_task"
	RuleMissingStack      Rule = "missing_stack"
	RuleIncompleteAnswers Rule = "incomplete_answers"
	RuleInvalidRange      Rule = "invalid_range"
	RuleNoQuestions       Rule = "no_questions"
)

// ValidationError is a failure caught before any request is sent.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is matches any ValidationError with the same rule, so callers can write
// errors.Is(err, ErrInvalidRange) regardless of the message text.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Rule == e.Rule
}

var (
	ErrMissingIdentifier = &ValidationError{Rule: RuleMissingIdentifier, Message: "User ID is required"}
	ErrMissingTask       = &ValidationError{Rule: RuleMissingTask, Message: "Task description is required when working"}
	ErrMissingStack      = &ValidationError{Rule: RuleMissingStack, Message: "Please select your task stack"}
	ErrIncompleteAnswers = &ValidationError{Rule: RuleIncompleteAnswers, Message: "Please answer all questions before submitting."}
	ErrInvalidRange      = &ValidationError{Rule: RuleInvalidRange, Message: "Start date must be before end date"}
	ErrNoQuestions       = &ValidationError{Rule: RuleNoQuestions, Message: "follow-up session has no questions"}
)

// ErrBusy is returned when an action is triggered while its previous
// request is still outstanding.
var ErrBusy = errors.New("a request is already in flight")

// ErrSessionClosed is returned for actions on a completed or dismissed
// follow-up session.
var ErrSessionClosed = errors.New("follow-up session is closed")

// RejectionError is a structured refusal from the backend (success=false).
// Message is shown to the user verbatim.
type RejectionError struct {
	Op      string
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// TransientError is a failure to talk to the backend at all: the request
// did not complete or its response could not be decoded.
type TransientError struct {
	Op  string
	Err error
}

// NetworkErrorMessage is the user-facing text for every TransientError.
const NetworkErrorMessage = "Network error. Please try again."

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// UserMessage returns the text a user should see for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransientError
	if errors.As(err, &te) {
		return NetworkErrorMessage
	}
	return err.Error()
}

// rejection builds a RejectionError, falling back to def when the backend
// gave no message.
func rejection(op, msg, def string) *RejectionError {
	if msg == "" {
		msg = def
	}
	return &RejectionError{Op: op, Message: msg}
}
