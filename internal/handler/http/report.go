package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetUserMonthly(w http.ResponseWriter, r *http.Request)
	GetDepartment(w http.ResponseWriter, r *http.Request)
	GetCompanyCompliance(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetUserMonthly handles GET /reports/user/{userId}
func (h *reportHandlerImpl) GetUserMonthly(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId", user.ErrUserNotFound)
	if !ok {
		return
	}
	year, month, ok := period(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetUserMonthly(r.Context(), p, report.UserReportRequest{
		UserID: userID,
		Year:   year,
		Month:  month,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDepartment handles GET /reports/department
func (h *reportHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	year, month, ok := period(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetDepartment(r.Context(), p, report.PeriodRequest{Year: year, Month: month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCompanyCompliance handles GET /reports/company/compliance
func (h *reportHandlerImpl) GetCompanyCompliance(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	year, month, ok := period(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetCompanyCompliance(r.Context(), p, report.PeriodRequest{Year: year, Month: month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export handles GET /reports/export?type=&format=&year=&month=
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.reportService.Export(r.Context(), p, report.ExportRequest{
		Type:   r.URL.Query().Get("type"),
		Format: r.URL.Query().Get("format"),
		Year:   year,
		Month:  month,
		UserID: userID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Data)
}
