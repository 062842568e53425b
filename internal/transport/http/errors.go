package http

import (
	"errors"
	"net/http"

	"prepify-quiz/internal/domain"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrInsufficientQuestions):
		return "insufficient_questions"
	case errors.Is(err, domain.ErrIllegalState):
		return "illegal_state"
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "unauthorized"
	}
	return "internal"
}

func statusFor(err error) int {
	switch errorCode(err) {
	case "invalid_argument":
		return http.StatusBadRequest
	case "insufficient_questions", "illegal_state", "conflict":
		return http.StatusConflict
	case "not_found":
		return http.StatusNotFound
	case "unauthorized":
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
