package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/publicid"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/google/uuid"
)

type CompanyServiceImpl struct {
	company.CompanyRepository
	files     file.FileService
	publicIDs *publicid.Generator
}

func NewCompanyService(
	companyRepository company.CompanyRepository,
	fileService file.FileService,
	publicIDs *publicid.Generator,
) company.CompanyService {
	return &CompanyServiceImpl{
		CompanyRepository: companyRepository,
		files:             fileService,
		publicIDs:         publicIDs,
	}
}

// List implements company.CompanyService.
func (c *CompanyServiceImpl) List(ctx context.Context, principal user.Principal, query company.ListCompanyQuery) (company.ListCompanyResponse, error) {
	if !principal.IsAdmin() {
		return company.ListCompanyResponse{}, user.ErrForbidden
	}
	if err := query.Validate(); err != nil {
		return company.ListCompanyResponse{}, err
	}

	companies, total, err := c.CompanyRepository.List(ctx, company.CompanyFilter{
		ID:     principal.CompanyFilter(),
		Search: query.Search,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		return company.ListCompanyResponse{}, fmt.Errorf("failed to list companies: %w", err)
	}

	responses := make([]company.CompanyResponse, 0, len(companies))
	for _, found := range companies {
		responses = append(responses, company.NewCompanyResponse(found))
	}

	return company.ListCompanyResponse{
		Companies:  responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

// Create implements company.CompanyService. The public id is derived from the
// new row's id before the insert.
func (c *CompanyServiceImpl) Create(ctx context.Context, principal user.Principal, req company.CreateCompanyRequest) (company.CompanyResponse, error) {
	if !principal.IsSuperAdmin() {
		return company.CompanyResponse{}, user.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to generate company id: %w", err)
	}

	created, err := c.CompanyRepository.Create(ctx, company.Company{
		ID:       id.String(),
		PublicID: c.publicIDs.Generate(id.String()),
		Name:     req.Name,
		LogoURL:  req.LogoURL,
		Settings: req.Settings,
	})
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to create company: %w", err)
	}

	slog.Info("company created", "company_id", created.ID, "public_id", created.PublicID, "created_by", principal.UserID)
	return company.NewCompanyResponse(created), nil
}

// GetByID implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).GetByID of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) GetByID(ctx context.Context, principal user.Principal, id string) (company.CompanyResponse, error) {
	found, err := c.load(ctx, principal, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return company.NewCompanyResponse(found), nil
}

// GetPublic implements company.CompanyService.
func (c *CompanyServiceImpl) GetPublic(ctx context.Context, publicID string) (company.PublicCompanyResponse, error) {
	publicID = strings.TrimSpace(publicID)
	if len(publicID) != publicid.Length {
		return company.PublicCompanyResponse{}, company.ErrCompanyNotFound
	}

	found, err := c.CompanyRepository.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return company.PublicCompanyResponse{}, err
		}
		return company.PublicCompanyResponse{}, fmt.Errorf("failed to get company by public id: %w", err)
	}
	// A stored public id not derived from the row's id was issued under another secret.
	if !c.publicIDs.Matches(found.ID, publicID) {
		slog.Warn("public company id does not match current secret", "company_id", found.ID)
		return company.PublicCompanyResponse{}, company.ErrCompanyNotFound
	}

	return company.PublicCompanyResponse{
		PublicID: found.PublicID,
		Name:     found.Name,
		LogoURL:  found.LogoURL,
	}, nil
}

// Update implements company.CompanyService.
// Subtle: this method shadows the method (CompanyRepository).Update of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Update(ctx context.Context, principal user.Principal, id string, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	if !principal.IsAdmin() {
		return company.CompanyResponse{}, user.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	existing, err := c.load(ctx, principal, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.LogoURL != nil {
		existing.LogoURL = req.LogoURL
	}
	if req.Settings != nil {
		existing.Settings = req.Settings
	}

	updated, err := c.CompanyRepository.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return company.CompanyResponse{}, err
		}
		return company.CompanyResponse{}, fmt.Errorf("failed to update company with id %s: %w", id, err)
	}
	return company.NewCompanyResponse(updated), nil
}

// UploadLogo implements company.CompanyService.
func (c *CompanyServiceImpl) UploadLogo(ctx context.Context, principal user.Principal, req company.UploadCompanyLogoRequest) (company.UploadCompanyLogoResponse, error) {
	if !principal.IsAdmin() {
		return company.UploadCompanyLogoResponse{}, user.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return company.UploadCompanyLogoResponse{}, err
	}

	existing, err := c.load(ctx, principal, req.CompanyID)
	if err != nil {
		return company.UploadCompanyLogoResponse{}, err
	}

	storedKey, err := c.files.UploadCompanyLogo(ctx, existing.ID, req.File)
	if err != nil {
		return company.UploadCompanyLogoResponse{}, err
	}

	logoURL := c.files.URL(storedKey)
	if err := c.CompanyRepository.UpdateLogo(ctx, existing.ID, logoURL); err != nil {
		if rmErr := c.files.DeleteFile(ctx, storedKey); rmErr != nil {
			slog.Warn("failed to remove orphaned logo", "key", storedKey, "error", rmErr)
		}
		if errors.Is(err, company.ErrCompanyNotFound) {
			return company.UploadCompanyLogoResponse{}, err
		}
		return company.UploadCompanyLogoResponse{}, fmt.Errorf("failed to update company logo URL: %w", err)
	}

	if existing.LogoURL != nil {
		if oldKey, ok := c.files.KeyFromURL(*existing.LogoURL); ok && oldKey != storedKey {
			if err := c.files.DeleteFile(ctx, oldKey); err != nil {
				slog.Warn("failed to remove previous logo", "key", oldKey, "error", err)
			}
		}
	}

	return company.UploadCompanyLogoResponse{LogoURL: logoURL}, nil
}

// Delete implements company.CompanyService. Companies that still have users
// are kept.
// Subtle: this method shadows the method (CompanyRepository).Delete of CompanyServiceImpl.CompanyRepository.
func (c *CompanyServiceImpl) Delete(ctx context.Context, principal user.Principal, id string) error {
	if !principal.IsSuperAdmin() {
		return user.ErrForbidden
	}

	found, err := c.load(ctx, principal, id)
	if err != nil {
		return err
	}

	users, err := c.CompanyRepository.CountUsers(ctx, found.ID)
	if err != nil {
		return fmt.Errorf("failed to count company users: %w", err)
	}
	if users > 0 {
		return company.ErrCompanyHasUsers
	}

	if err := c.CompanyRepository.Delete(ctx, found.ID); err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) || errors.Is(err, company.ErrCompanyHasUsers) {
			return err
		}
		return fmt.Errorf("failed to delete company with id %s: %w", id, err)
	}

	slog.Info("company deleted", "company_id", found.ID, "deleted_by", principal.UserID)
	return nil
}

// load returns a company the caller belongs to, or any company for super
// admins. Other companies are reported as not found.
func (c *CompanyServiceImpl) load(ctx context.Context, principal user.Principal, id string) (company.Company, error) {
	if !principal.CanAccessCompany(id) {
		return company.Company{}, company.ErrCompanyNotFound
	}

	found, err := c.CompanyRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return company.Company{}, err
		}
		return company.Company{}, fmt.Errorf("failed to get company by ID: %w", err)
	}
	return found, nil
}
