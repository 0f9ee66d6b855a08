package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order; the message is the target's own text so wrapping
// context never reaches the client.
var errorMappings = []errorMapping{
	// Auth domain errors
	{auth.ErrMissingAuthHeader, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrEmptyToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrServerConfig, http.StatusInternalServerError, "SERVER_CONFIG_ERROR"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{auth.ErrWrongTokenType, http.StatusUnauthorized, "WRONG_TOKEN_TYPE"},
	{auth.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{auth.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{auth.ErrRefreshTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
	{auth.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},

	// User domain errors
	{user.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{user.ErrUserEmailExists, http.StatusConflict, "CONFLICT"},

	// Attendance domain errors
	{attendance.ErrAlreadyOpen, http.StatusBadRequest, "ATTENDANCE_STATE"},
	{attendance.ErrAlreadyCompleted, http.StatusBadRequest, "ATTENDANCE_STATE"},
	{attendance.ErrNoOpenSession, http.StatusBadRequest, "ATTENDANCE_STATE"},
	{attendance.ErrInvalidClockOut, http.StatusBadRequest, "ATTENDANCE_STATE"},
	{attendance.ErrDuplicateDay, http.StatusBadRequest, "ATTENDANCE_STATE"},
	{attendance.ErrAttendanceNotFound, http.StatusNotFound, "NOT_FOUND"},

	// Leave domain errors
	{leave.ErrLeaveRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
	{leave.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{leave.ErrNotDraft, http.StatusConflict, "INVALID_TRANSITION"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.First(), validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				slog.Error("request failed", "error", err)
			}
			Error(w, m.status, m.code, m.target.Error(), nil)
			return
		}
	}

	if errors.Is(err, database.ErrStorage) {
		attrs := []interface{}{"error", err}
		var storageErr *database.StorageError
		if errors.As(err, &storageErr) {
			attrs = []interface{}{"op", storageErr.Op, "error", storageErr.Err}
		}
		slog.Error("storage failure", attrs...)
		Error(w, http.StatusInternalServerError, "STORAGE_ERROR", "A storage error occurred", nil)
		return
	}

	// Default
	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
