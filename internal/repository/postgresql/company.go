package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `
	c.id, c.public_id, c.name, c.logo_url, c.settings, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM users u WHERE u.company_id = c.id)
`

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

func scanCompany(row pgx.Row) (company.Company, error) {
	var found company.Company
	err := row.Scan(
		&found.ID,
		&found.PublicID,
		&found.Name,
		&found.LogoURL,
		&found.Settings,
		&found.CreatedAt,
		&found.UpdatedAt,
		&found.UsersCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, err
	}
	return found, nil
}

func settingsOrEmpty(settings map[string]any) map[string]any {
	if settings == nil {
		return map[string]any{}
	}
	return settings
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	if newCompany.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return company.Company{}, fmt.Errorf("failed to generate company id: %w", err)
		}
		newCompany.ID = id.String()
	}

	query := `
		INSERT INTO companies (id, public_id, name, logo_url, settings)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.Exec(ctx, query,
		newCompany.ID,
		newCompany.PublicID,
		newCompany.Name,
		newCompany.LogoURL,
		settingsOrEmpty(newCompany.Settings),
	)
	if err != nil {
		if database.IsUniqueViolation(err, "companies_public_id_key") {
			return company.Company{}, company.ErrPublicIDCollision
		}
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}

	return c.GetByID(ctx, newCompany.ID)
}

// GetByID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	if !validator.IsValidUUID(id) {
		return company.Company{}, company.ErrCompanyNotFound
	}
	q := GetQuerier(ctx, c.db)
	query := `SELECT ` + companyColumns + ` FROM companies c WHERE c.id = $1`
	return scanCompany(q.QueryRow(ctx, query, id))
}

// GetByPublicID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByPublicID(ctx context.Context, publicID string) (company.Company, error) {
	q := GetQuerier(ctx, c.db)
	query := `SELECT ` + companyColumns + ` FROM companies c WHERE c.public_id = $1`
	return scanCompany(q.QueryRow(ctx, query, publicID))
}

// List implements company.CompanyRepository.
func (c *companyRepositoryImpl) List(ctx context.Context, filter company.CompanyFilter) ([]company.Company, int64, error) {
	q := GetQuerier(ctx, c.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.ID != nil {
		where += fmt.Sprintf(" AND c.id = $%d", argIdx)
		args = append(args, *filter.ID)
		argIdx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND c.name ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM companies c WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT %s FROM companies c WHERE %s ORDER BY c.name, c.id LIMIT $%d OFFSET $%d`,
		companyColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]company.Company, 0)
	for rows.Next() {
		found, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, found)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// Update implements company.CompanyRepository.
func (c *companyRepositoryImpl) Update(ctx context.Context, updated company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		UPDATE companies
		SET name = $1, logo_url = $2, settings = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, updated.Name, updated.LogoURL, settingsOrEmpty(updated.Settings), updated.ID)
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to update company with id %s: %w", updated.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return company.Company{}, company.ErrCompanyNotFound
	}

	return c.GetByID(ctx, updated.ID)
}

// UpdateLogo implements company.CompanyRepository.
func (c *companyRepositoryImpl) UpdateLogo(ctx context.Context, id, logoURL string) error {
	q := GetQuerier(ctx, c.db)

	tag, err := q.Exec(ctx, `UPDATE companies SET logo_url = $1, updated_at = NOW() WHERE id = $2`, logoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update logo of company %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// CountUsers implements company.CompanyRepository.
func (c *companyRepositoryImpl) CountUsers(ctx context.Context, id string) (int64, error) {
	q := GetQuerier(ctx, c.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE company_id = $1`, id).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count users of company %s: %w", id, err)
	}
	return total, nil
}

// Delete implements company.CompanyRepository. Users still pointing at the
// company block the delete through the foreign key.
func (c *companyRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, c.db)

	tag, err := q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return company.ErrCompanyHasUsers
		}
		return fmt.Errorf("failed to delete company %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}
