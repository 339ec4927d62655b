package report

import "errors"

var (
	ErrCompanyScopeRequired = errors.New("select a company with the X-Company-ID header")
	ErrUnsupportedExport    = errors.New("unsupported export type or format")
)
