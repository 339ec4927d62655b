package report

import (
	"context"
	"time"
)

// ComplianceCache stores generated compliance reports per company and month.
// A miss returns (nil, nil).
type ComplianceCache interface {
	Get(ctx context.Context, companyID string, year, month int) (*ComplianceReport, error)
	Set(ctx context.Context, report ComplianceReport, ttl time.Duration) error
	Invalidate(ctx context.Context, companyID string, year, month int) error
}

// Invalidator drops cached reports for every month of [from, to].
type Invalidator interface {
	InvalidateRange(ctx context.Context, companyID string, from, to time.Time)
}
