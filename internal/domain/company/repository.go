package company

import "context"

type CompanyFilter struct {
	ID     *string
	Search string
	Page   int
	Limit  int
}

type CompanyRepository interface {
	Create(ctx context.Context, newCompany Company) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	GetByPublicID(ctx context.Context, publicID string) (Company, error)
	List(ctx context.Context, filter CompanyFilter) ([]Company, int64, error)
	Update(ctx context.Context, c Company) (Company, error)
	UpdateLogo(ctx context.Context, id, logoURL string) error
	CountUsers(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}
