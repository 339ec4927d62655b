package user

import (
	"context"
	"time"
)

type UserFilter struct {
	CompanyID *string
	Role      *Role
	Search    string
	Page      int
	Limit     int
}

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByVerificationToken(ctx context.Context, token string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListByCompany(ctx context.Context, companyID string) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	PurgeExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
}
