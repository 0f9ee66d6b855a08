package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Record implements AttendanceHandler. clockIn answers 201, clockOut 200.
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req attendance.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Record attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.Record(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Action == attendance.ActionClockIn {
		response.Created(w, "Clocked in successfully", result)
		return
	}
	response.SuccessWithMessage(w, "Clocked out successfully", result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := attendance.AttendanceFilter{
		UserID:    query.Get("id"),
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
	}

	result, err := h.attendanceService.List(r.Context(), identity, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithCount(w, result.Data, result.Count)
}
