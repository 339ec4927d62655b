package report

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// GetUserMonthly builds one user's month
	GetUserMonthly(ctx context.Context, principal user.Principal, req UserReportRequest) (UserMonthlyReport, error)

	// GetDepartment summarises every user of the scoped company
	GetDepartment(ctx context.Context, principal user.Principal, req PeriodRequest) (DepartmentReport, error)

	// GetCompanyCompliance builds the monthly compliance report
	GetCompanyCompliance(ctx context.Context, principal user.Principal, req PeriodRequest) (ComplianceReport, error)

	// Export renders attendance, leave or compliance data as a file
	Export(ctx context.Context, principal user.Principal, req ExportRequest) (ExportFile, error)
}
