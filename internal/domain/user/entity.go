package user

import "time"

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN" // Cross-tenant operator, no company
	RoleAdmin      Role = "ADMIN"       // Manages one company
	RoleEmployee   Role = "EMPLOYEE"    // Regular employee
)

var Roles = []string{string(RoleSuperAdmin), string(RoleAdmin), string(RoleEmployee)}

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// IsAdmin reports whether the role may manage users and review requests.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	ID                         string
	Email                      string
	PasswordHash               string
	Name                       string
	Role                       Role
	CompanyID                  *string
	EmailVerified              bool
	EmailVerifiedAt            *time.Time
	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time
	CreatedAt                  time.Time
	UpdatedAt                  time.Time

	// Join
	CompanyName *string
}

// BelongsTo checks the user's company against companyID.
func (u *User) BelongsTo(companyID string) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}

// VerificationExpired reports whether the pending verification token is stale at now.
func (u *User) VerificationExpired(now time.Time) bool {
	return u.VerificationTokenExpiresAt == nil || now.After(*u.VerificationTokenExpiresAt)
}
