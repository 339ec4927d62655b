package company

import (
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const maxLogoSize = 5 << 20

type CompanyResponse struct {
	ID         string         `json:"id"`
	PublicID   string         `json:"publicId"`
	Name       string         `json:"name"`
	LogoURL    *string        `json:"logoUrl"`
	Settings   map[string]any `json:"settings"`
	UsersCount int64          `json:"usersCount"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
}

func NewCompanyResponse(c Company) CompanyResponse {
	settings := c.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return CompanyResponse{
		ID:         c.ID,
		PublicID:   c.PublicID,
		Name:       c.Name,
		LogoURL:    c.LogoURL,
		Settings:   settings,
		UsersCount: c.UsersCount,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

// PublicCompanyResponse is what unauthenticated pages may see.
type PublicCompanyResponse struct {
	PublicID string  `json:"publicId"`
	Name     string  `json:"name"`
	LogoURL  *string `json:"logoUrl"`
}

type CreateCompanyRequest struct {
	Name     string         `json:"name"`
	LogoURL  *string        `json:"logoUrl,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

func (r *CreateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	return errs.Err()
}

type UpdateCompanyRequest struct {
	Name     *string        `json:"name,omitempty"`
	LogoURL  *string        `json:"logoUrl,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
		if name == "" {
			errs.Add("name", "name must not be empty")
		} else if len(name) > 255 {
			errs.Add("name", "name must not exceed 255 characters")
		}
	}

	return errs.Err()
}

type ListCompanyQuery struct {
	Page   int
	Limit  int
	Search string
}

func (q *ListCompanyQuery) Validate() error {
	validator.NormalizePagination(&q.Page, &q.Limit)
	q.Search = strings.TrimSpace(q.Search)
	return nil
}

type ListCompanyResponse struct {
	Companies  []CompanyResponse `json:"companies"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

type UploadCompanyLogoRequest struct {
	CompanyID  string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *UploadCompanyLogoRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FileHeader == nil || r.File == nil {
		errs.Add("file", "company logo is required")
		return errs
	}

	ext := strings.ToLower(filepath.Ext(r.FileHeader.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		errs.Add("file", "invalid file type: only jpg, jpeg, png allowed")
	}
	if r.FileHeader.Size > maxLogoSize {
		errs.Add("file", "company logo must not exceed 5MB")
	}

	return errs.Err()
}

type UploadCompanyLogoResponse struct {
	LogoURL string `json:"logoUrl"`
}
