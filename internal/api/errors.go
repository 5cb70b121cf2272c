package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/service/card_review"
	"github.com/synaptic/study-engine/internal/service/study_plan"
	"github.com/synaptic/study-engine/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrRequestInProgress),
		errors.Is(err, store.ErrIdempotencyKeyReused),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, study_plan.ErrNoSessionsGenerated):
		return http.StatusUnprocessableEntity

	case errors.Is(err, card_review.ErrPersistFailed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)

	case errors.Is(err, domain.ErrInvalidGrade):
		return "Invalid review grade"
	case errors.Is(err, study_plan.ErrMissingEndDate):
		return "An end date or exam is required"
	case errors.Is(err, domain.ErrValidation):
		return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrExamNotFound):
		return "Exam not found"
	case errors.Is(err, store.ErrCurriculumNotFound):
		return "Curriculum not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrRequestInProgress):
		return "A request with this idempotency key is already in progress"
	case errors.Is(err, store.ErrIdempotencyKeyReused):
		return "This idempotency key was already used for a different card"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, study_plan.ErrNoSessionsGenerated):
		return "No study sessions fit in the requested date range"
	case errors.Is(err, card_review.ErrPersistFailed):
		return "Review could not be saved, please retry"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	var derr *domain.ValidationError
	if errors.As(err, &derr) {
		return fmt.Sprintf("Invalid %s: %s", derr.Field, derr.Message)
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
