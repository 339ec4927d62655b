package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	u.id, u.email, u.password_hash, u.name, u.role, u.company_id,
	u.email_verified, u.email_verified_at, u.verification_token, u.verification_token_expires_at,
	u.created_at, u.updated_at, c.name
`

const userFrom = `
	FROM users u
	LEFT JOIN companies c ON c.id = u.company_id
`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var found user.User
	err := row.Scan(
		&found.ID,
		&found.Email,
		&found.PasswordHash,
		&found.Name,
		&found.Role,
		&found.CompanyID,
		&found.EmailVerified,
		&found.EmailVerifiedAt,
		&found.VerificationToken,
		&found.VerificationTokenExpiresAt,
		&found.CreatedAt,
		&found.UpdatedAt,
		&found.CompanyName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return found, nil
}

func translateUserWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err, "users_email_key"):
		return user.ErrEmailAlreadyExists
	case database.IsForeignKeyViolation(err):
		return company.ErrCompanyNotFound
	}
	return err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, fmt.Errorf("failed to generate user id: %w", err)
		}
		newUser.ID = id.String()
	}

	query := `
		INSERT INTO users (
			id, email, password_hash, name, role, company_id,
			email_verified, email_verified_at, verification_token, verification_token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		newUser.ID,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Name,
		newUser.Role,
		newUser.CompanyID,
		newUser.EmailVerified,
		newUser.EmailVerifiedAt,
		newUser.VerificationToken,
		newUser.VerificationTokenExpiresAt,
	)
	if err != nil {
		return user.User{}, translateUserWriteError(err)
	}

	return r.GetByID(ctx, newUser.ID)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	if !validator.IsValidUUID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.id = $1`
	return scanUser(q.QueryRow(ctx, query, id))
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.email = $1`
	return scanUser(q.QueryRow(ctx, query, email))
}

// GetByVerificationToken implements user.UserRepository.
func (r *userRepositoryImpl) GetByVerificationToken(ctx context.Context, token string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.verification_token = $1`
	return scanUser(q.QueryRow(ctx, query, token))
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.CompanyID != nil {
		where += fmt.Sprintf(" AND u.company_id = $%d", argIdx)
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	if filter.Role != nil {
		where += fmt.Sprintf(" AND u.role = $%d", argIdx)
		args = append(args, *filter.Role)
		argIdx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (u.name ILIKE $%d OR u.email ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM users u WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	selectQuery := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY u.created_at DESC, u.id LIMIT $%d OFFSET $%d`,
		userColumns, userFrom, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	users, err := r.collect(ctx, q, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListByCompany implements user.UserRepository.
func (r *userRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.company_id = $1 ORDER BY u.name, u.id`

	users, err := r.collect(ctx, q, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users of company %s: %w", companyID, err)
	}
	return users, nil
}

func (r *userRepositoryImpl) collect(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]user.User, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update implements user.UserRepository. Only profile, role and company change here.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET email = $1, name = $2, role = $3, company_id = $4, updated_at = NOW()
		WHERE id = $5
	`

	tag, err := q.Exec(ctx, query, u.Email, u.Name, u.Role, u.CompanyID, u.ID)
	if err != nil {
		return user.User{}, translateUserWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrUserNotFound
	}

	return r.GetByID(ctx, u.ID)
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetVerificationToken implements user.UserRepository.
func (r *userRepositoryImpl) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET verification_token = $1, verification_token_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := q.Exec(ctx, query, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to set verification token for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// MarkEmailVerified implements user.UserRepository. The token is cleared so it cannot be replayed.
func (r *userRepositoryImpl) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET email_verified = TRUE, email_verified_at = $1,
			verification_token = NULL, verification_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := q.Exec(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user %s verified: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Count implements user.UserRepository.
func (r *userRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// PurgeExpiredVerificationTokens implements user.UserRepository.
func (r *userRepositoryImpl) PurgeExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET verification_token = NULL, verification_token_expires_at = NULL, updated_at = NOW()
		WHERE verification_token IS NOT NULL AND verification_token_expires_at < $1
	`
	tag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge verification tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
