package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	goredis "github.com/redis/go-redis/v9"
)

const complianceKeyPrefix = "report:compliance:"

// ComplianceKey is the cache key of one company's compliance report for a month.
func ComplianceKey(companyID string, year, month int) string {
	return fmt.Sprintf("%s%s:%04d-%02d", complianceKeyPrefix, companyID, year, month)
}

type ReportCache struct {
	rdb *goredis.Client
}

// NewReportCache returns a compliance cache that also drops stale months
// when attendance or leave data changes.
func NewReportCache(rdb *goredis.Client) *ReportCache {
	return &ReportCache{rdb: rdb}
}

var (
	_ report.ComplianceCache = (*ReportCache)(nil)
	_ report.Invalidator     = (*ReportCache)(nil)
)

// Get implements report.ComplianceCache.
func (c *ReportCache) Get(ctx context.Context, companyID string, year, month int) (*report.ComplianceReport, error) {
	cached, err := c.rdb.Get(ctx, ComplianceKey(companyID, year, month)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read compliance cache: %w", err)
	}

	var rep report.ComplianceReport
	if err := json.Unmarshal([]byte(cached), &rep); err != nil {
		// A payload we cannot decode is treated as a miss and overwritten.
		return nil, nil
	}
	return &rep, nil
}

// Set implements report.ComplianceCache.
func (c *ReportCache) Set(ctx context.Context, rep report.ComplianceReport, ttl time.Duration) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode compliance report: %w", err)
	}
	key := ComplianceKey(rep.CompanyID, rep.Period.Year, rep.Period.Month)
	if err := c.rdb.Set(ctx, key, string(payload), ttl).Err(); err != nil {
		return fmt.Errorf("failed to write compliance cache: %w", err)
	}
	return nil
}

// Invalidate implements report.ComplianceCache.
func (c *ReportCache) Invalidate(ctx context.Context, companyID string, year, month int) error {
	if err := c.rdb.Del(ctx, ComplianceKey(companyID, year, month)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate compliance cache: %w", err)
	}
	return nil
}

// InvalidateRange implements report.Invalidator. Failures are logged only;
// the cached entry expires on its own.
func (c *ReportCache) InvalidateRange(ctx context.Context, companyID string, from, to time.Time) {
	if to.Before(from) {
		from, to = to, from
	}
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	keys := make([]string, 0, 1)
	for !cursor.After(end) {
		keys = append(keys, ComplianceKey(companyID, cursor.Year(), int(cursor.Month())))
		cursor = cursor.AddDate(0, 1, 0)
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Error("failed to invalidate compliance cache",
			"error", err,
			"company_id", companyID,
			"keys", keys,
		)
	}
}
