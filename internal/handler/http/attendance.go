package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// ClockIn implements AttendanceHandler. The body is optional.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req attendance.ClockInRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ClockIn") {
		return
	}

	rec, err := h.attendanceService.ClockIn(r.Context(), p, req)
	if err != nil {
		slog.Error("ClockIn service error", "error", err, "user_id", p.UserID)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in successfully", rec)
}

// ClockOut implements AttendanceHandler. The body is optional.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req attendance.ClockOutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "ClockOut") {
		return
	}

	rec, err := h.attendanceService.ClockOut(r.Context(), p, req)
	if err != nil {
		slog.Error("ClockOut service error", "error", err, "user_id", p.UserID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out successfully", rec)
}

// Today implements AttendanceHandler. Data is null before the first clock-in.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	rec, err := h.attendanceService.GetToday(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rec)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}

	filter := attendance.AttendanceFilterRequest{
		UserID:    userID,
		StartDate: queryString(r, "startDate"),
		EndDate:   queryString(r, "endDate"),
	}
	if filter.Page, ok = queryInt(w, r, "page"); !ok {
		return
	}
	if filter.Limit, ok = queryInt(w, r, "limit"); !ok {
		return
	}

	result, err := h.attendanceService.ListRecords(r.Context(), p, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	year, month, ok := period(w, r)
	if !ok {
		return
	}
	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}

	summary, err := h.attendanceService.GetSummary(r.Context(), p, attendance.SummaryRequest{
		UserID: userID,
		Year:   year,
		Month:  month,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}
