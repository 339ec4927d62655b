package company

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type CompanyService interface {
	List(ctx context.Context, principal user.Principal, query ListCompanyQuery) (ListCompanyResponse, error)
	Create(ctx context.Context, principal user.Principal, req CreateCompanyRequest) (CompanyResponse, error)
	GetByID(ctx context.Context, principal user.Principal, id string) (CompanyResponse, error)
	GetPublic(ctx context.Context, publicID string) (PublicCompanyResponse, error)
	Update(ctx context.Context, principal user.Principal, id string, req UpdateCompanyRequest) (CompanyResponse, error)
	UploadLogo(ctx context.Context, principal user.Principal, req UploadCompanyLogoRequest) (UploadCompanyLogoResponse, error)
	Delete(ctx context.Context, principal user.Principal, id string) error
}
