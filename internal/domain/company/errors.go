package company

import "errors"

var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrCompanyHasUsers   = errors.New("company still has users and cannot be deleted")
	ErrPublicIDCollision = errors.New("company public id collision")
	ErrInvalidLogoFile   = errors.New("invalid logo file")
)
