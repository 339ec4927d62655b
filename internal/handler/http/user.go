package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	adminService user.AdminService
}

func NewUserHandler(adminService user.AdminService) UserHandler {
	return &userHandlerImpl{
		adminService: adminService,
	}
}

// List implements UserHandler.
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	query := user.ListUserQuery{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
	}
	if query.Page, ok = queryInt(w, r, "page"); !ok {
		return
	}
	if query.Limit, ok = queryInt(w, r, "limit"); !ok {
		return
	}

	result, err := h.adminService.List(r.Context(), p, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Users, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Create implements UserHandler.
func (h *userHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req user.CreateUserRequest
	if !decodeJSON(w, r, &req, "CreateUser") {
		return
	}

	created, err := h.adminService.Create(r.Context(), p, req)
	if err != nil {
		slog.Error("CreateUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created successfully", created)
}

// Get implements UserHandler.
func (h *userHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", user.ErrUserNotFound)
	if !ok {
		return
	}

	result, err := h.adminService.Get(r.Context(), p, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements UserHandler.
func (h *userHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", user.ErrUserNotFound)
	if !ok {
		return
	}
	var req user.UpdateUserRequest
	if !decodeJSON(w, r, &req, "UpdateUser") {
		return
	}

	updated, err := h.adminService.Update(r.Context(), p, id, req)
	if err != nil {
		slog.Error("UpdateUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated successfully", updated)
}

// Delete implements UserHandler.
func (h *userHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", user.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.adminService.Delete(r.Context(), p, id); err != nil {
		slog.Error("DeleteUser service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted successfully", nil)
}
