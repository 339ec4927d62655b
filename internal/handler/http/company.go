package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const maxLogoUploadBytes = 5 << 20

type CompanyHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetPublic(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UploadLogo(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{
		companyService: companyService,
	}
}

// List implements CompanyHandler.
func (c *CompanyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	query := company.ListCompanyQuery{Search: r.URL.Query().Get("search")}
	if query.Page, ok = queryInt(w, r, "page"); !ok {
		return
	}
	if query.Limit, ok = queryInt(w, r, "limit"); !ok {
		return
	}

	result, err := c.companyService.List(r.Context(), p, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Companies, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Create implements CompanyHandler.
func (c *CompanyHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req company.CreateCompanyRequest
	if !decodeJSON(w, r, &req, "CreateCompany") {
		return
	}

	created, err := c.companyService.Create(r.Context(), p, req)
	if err != nil {
		slog.Error("CreateCompany service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Company created successfully", created)
}

// GetByID implements CompanyHandler.
func (c *CompanyHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", company.ErrCompanyNotFound)
	if !ok {
		return
	}

	result, err := c.companyService.GetByID(r.Context(), p, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetPublic implements CompanyHandler. It needs no token.
func (c *CompanyHandlerImpl) GetPublic(w http.ResponseWriter, r *http.Request) {
	result, err := c.companyService.GetPublic(r.Context(), chi.URLParam(r, "publicId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements CompanyHandler.
func (c *CompanyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", company.ErrCompanyNotFound)
	if !ok {
		return
	}
	var req company.UpdateCompanyRequest
	if !decodeJSON(w, r, &req, "UpdateCompany") {
		return
	}

	updated, err := c.companyService.Update(r.Context(), p, id, req)
	if err != nil {
		slog.Error("UpdateCompany service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company updated successfully", updated)
}

// UploadLogo implements CompanyHandler. Expects multipart field "logo".
func (c *CompanyHandlerImpl) UploadLogo(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", company.ErrCompanyNotFound)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(maxLogoUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("logo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
	}

	result, err := c.companyService.UploadLogo(r.Context(), p, company.UploadCompanyLogoRequest{
		CompanyID:  id,
		File:       file,
		FileHeader: fileHeader,
	})
	if err != nil {
		slog.Error("UploadLogo service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company logo uploaded successfully", result)
}

// Delete implements CompanyHandler.
func (c *CompanyHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", company.ErrCompanyNotFound)
	if !ok {
		return
	}

	if err := c.companyService.Delete(r.Context(), p, id); err != nil {
		slog.Error("DeleteCompany service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company deleted successfully", nil)
}
