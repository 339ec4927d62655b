package user

import "time"

// Principal is the authenticated caller. Middleware builds it from the bearer
// token and handlers pass it to services explicitly.
type Principal struct {
	UserID    string
	Role      Role
	CompanyID string // empty for super admins
	TokenID   string
	ExpiresAt time.Time

	// ScopeCompanyID is the company the request operates on. Super admins
	// pick it with X-Company-ID; empty means every company.
	ScopeCompanyID string
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

func (p Principal) IsAdmin() bool {
	return p.Role.IsAdmin()
}

// CanAccessCompany reports whether the caller may read or modify data owned by companyID.
func (p Principal) CanAccessCompany(companyID string) bool {
	if p.IsSuperAdmin() {
		return p.ScopeCompanyID == "" || p.ScopeCompanyID == companyID
	}
	return p.CompanyID != "" && p.CompanyID == companyID
}

// CanAccessUser reports whether the caller may see records owned by target.
// Employees only see themselves, admins see their company.
func (p Principal) CanAccessUser(target User) bool {
	if p.UserID == target.ID {
		return true
	}
	if !p.IsAdmin() {
		return false
	}
	if target.CompanyID == nil {
		return p.IsSuperAdmin()
	}
	return p.CanAccessCompany(*target.CompanyID)
}

// CompanyFilter returns the company restriction for list queries, nil meaning none.
func (p Principal) CompanyFilter() *string {
	if p.ScopeCompanyID != "" {
		id := p.ScopeCompanyID
		return &id
	}
	if p.IsSuperAdmin() {
		return nil
	}
	id := p.CompanyID
	return &id
}
