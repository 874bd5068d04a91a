package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wakelan/wakelan/internal/middleware"
	"github.com/wakelan/wakelan/internal/store"
)

// Request payload validator, shared by all handlers.
var validate = validator.New()

// SendJSON sends a JSON response
func SendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// SendError sends a standardized error response
func SendError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := middleware.ErrorResponse{
		Error: middleware.ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// ParseIDParam extracts and validates an integer id from URL params
func ParseIDParam(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		SendError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid id format")
		return 0, false
	}
	return id, true
}

// DecodeJSON decodes request body with error handling
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var input T
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendError(w, r, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return input, false
	}
	return input, true
}

// ValidatePayload runs struct validation and reports field errors as a 400.
func ValidatePayload(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	err := validate.Struct(payload)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			messages[i] = formatValidationMessage(fe)
		}
		SendError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", strings.Join(messages, "; "))
		return false
	}

	SendError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload")
	return false
}

// formatValidationMessage creates human-readable error messages
func formatValidationMessage(e validator.FieldError) string {
	field := toSnakeCase(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

// toSnakeCase converts PascalCase/camelCase to snake_case
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				result.WriteByte('_')
			}
			result.WriteByte(byte(r + 'a' - 'A'))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// HandleStoreError sends the appropriate error response for store errors.
// Returns true when err was non-nil and a response has been written.
func HandleStoreError(w http.ResponseWriter, r *http.Request, err error, entityName string) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		SendError(w, r, http.StatusNotFound, "NOT_FOUND", entityName+" not found")
	case errors.Is(err, store.ErrDuplicateMAC):
		SendError(w, r, http.StatusConflict, "CONFLICT", "An equipo with this MAC address already exists")
	case errors.Is(err, store.ErrDuplicateUsername):
		SendError(w, r, http.StatusConflict, "CONFLICT", "Username is already taken")
	case errors.Is(err, store.ErrAlreadyAssigned):
		SendError(w, r, http.StatusConflict, "CONFLICT", "Equipo is already assigned to this user")
	case errors.Is(err, store.ErrNotAssigned):
		SendError(w, r, http.StatusConflict, "CONFLICT", "Equipo is not assigned to this user")
	default:
		SendError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Database error")
	}
	return true
}
