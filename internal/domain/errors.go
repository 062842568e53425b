package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for bad caller input (non-positive counts, empty filters, unknown options).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientQuestions is returned when the bank holds fewer matches than requested.
	ErrInsufficientQuestions = errors.New("insufficient questions")
	// ErrIllegalState is returned when an operation does not fit the session's current state.
	ErrIllegalState = errors.New("illegal session state")
	// ErrDivisionByZero is returned when scoring a session without questions.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrSessionNotFound is returned when a quiz session is not live.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionNotFound indicates a question ID does not exist in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUserNotFound indicates the username is unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("username already taken")
	// ErrInvalidCredentials is returned when a login does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InsufficientQuestionsError carries how many questions could have been served,
// so callers can decide whether to clamp the request or abort.
type InsufficientQuestionsError struct {
	Requested int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("insufficient questions: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientQuestionsError) Is(target error) bool {
	return target == ErrInsufficientQuestions
}

// Invalidf wraps ErrInvalidArgument with context.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IllegalStatef wraps ErrIllegalState with context.
func IllegalStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}
