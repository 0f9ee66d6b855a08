package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"missing header", auth.ErrMissingAuthHeader, http.StatusUnauthorized, "UNAUTHORIZED", auth.ErrMissingAuthHeader.Error()},
		{"wrapped invalid token", fmt.Errorf("%w: signature mismatch", auth.ErrInvalidToken), http.StatusUnauthorized, "INVALID_TOKEN", auth.ErrInvalidToken.Error()},
		{"refresh token", auth.ErrWrongTokenType, http.StatusUnauthorized, "WRONG_TOKEN_TYPE", auth.ErrWrongTokenType.Error()},
		{"server config", auth.ErrServerConfig, http.StatusInternalServerError, "SERVER_CONFIG_ERROR", auth.ErrServerConfig.Error()},
		{"user not found", auth.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "user not found"},
		{"inactive", auth.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE", "account is inactive"},
		{"already open", attendance.ErrAlreadyOpen, http.StatusBadRequest, "ATTENDANCE_STATE", "Already clocked in today. Please clock out first."},
		{"already completed", attendance.ErrAlreadyCompleted, http.StatusBadRequest, "ATTENDANCE_STATE", "You have already completed attendance for today (clocked in and out)."},
		{"leave not found", leave.ErrLeaveRequestNotFound, http.StatusNotFound, "NOT_FOUND", "Leave request not found"},
		{"invalid transition", fmt.Errorf("decide: %w", leave.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION", leave.ErrInvalidTransition.Error()},
		{"storage", database.Wrap("insert", errors.New("dial tcp: refused")), http.StatusInternalServerError, "STORAGE_ERROR", "A storage error occurred"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestHandleError_StorageLogsOperation(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	err := fmt.Errorf("failed to get leave request: %w", database.Wrap("select leave request", errors.New("dial tcp: refused")))
	rec := httptest.NewRecorder()
	HandleError(rec, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "storage failure", entry["msg"])
	assert.Equal(t, "select leave request", entry["op"])
	assert.Equal(t, "dial tcp: refused", entry["error"])
}

func TestHandleError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{
		{Field: "reason", Message: "reason must be at least 10 characters"},
		{Field: "endDate", Message: "end date must be after start date"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "reason must be at least 10 characters", body.Message)
	assert.Equal(t, "end date must be after start date", body.Error.Details["endDate"])
}

func TestSuccessWithCount(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessWithCount(rec, []string{}, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, rec.Body.String())
}
