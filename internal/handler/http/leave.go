package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
	}
}

// Create implements LeaveHandler.
func (h *leaveHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req leave.CreateLeaveRequest
	if !decodeJSON(w, r, &req, "CreateLeave") {
		return
	}

	created, err := h.leaveService.Create(r.Context(), p, req)
	if err != nil {
		slog.Error("CreateLeave service error", "error", err, "user_id", p.UserID)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", created)
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}

	filter := leave.LeaveRequestFilterRequest{
		UserID:    userID,
		Status:    queryString(r, "status"),
		LeaveType: queryString(r, "leaveType"),
	}
	if filter.Page, ok = queryInt(w, r, "page"); !ok {
		return
	}
	if filter.Limit, ok = queryInt(w, r, "limit"); !ok {
		return
	}

	result, err := h.leaveService.List(r.Context(), p, filter)
	if err != nil {
		slog.Error("ListLeave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.LeaveRequests, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	result, err := h.leaveService.Get(r.Context(), p, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements LeaveHandler.
func (h *leaveHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}
	var req leave.UpdateLeaveRequest
	if !decodeJSON(w, r, &req, "UpdateLeave") {
		return
	}

	updated, err := h.leaveService.Update(r.Context(), p, id, req)
	if err != nil {
		slog.Error("UpdateLeave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request updated successfully", updated)
}

// UpdateStatus implements LeaveHandler.
func (h *leaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}
	var req leave.UpdateStatusRequest
	if !decodeJSON(w, r, &req, "UpdateLeaveStatus") {
		return
	}

	updated, err := h.leaveService.UpdateStatus(r.Context(), p, id, req)
	if err != nil {
		slog.Error("UpdateLeaveStatus service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request status updated successfully", updated)
}
