package company

import "time"

type Company struct {
	ID        string
	PublicID  string
	Name      string
	LogoURL   *string
	Settings  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time

	// Aggregate
	UsersCount int64
}
