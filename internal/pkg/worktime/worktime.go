// Package worktime holds the calendar and working-time arithmetic shared by
// attendance summaries and compliance reports. Every function is pure.
package worktime

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StandardDailyHours   = 8.0
	MonthlyOvertimeLimit = 45.0
	PaidLeaveTargetDays  = 5
	TopN                 = 10

	// Night work runs from 22:00 to 05:00 the next morning.
	NightStartHour = 22
	NightEndHour   = 5
)

// MonthBounds returns midnight of the first day, midnight of the last day and
// midnight of the first day of the following month, all in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (first, last, next time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next = first.AddDate(0, 1, 0)
	last = next.AddDate(0, 0, -1)
	return first, last, next
}

// Day returns the calendar day of t in loc as UTC midnight, the form DATE
// columns are stored and scanned in.
func Day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth handles leap years through time.Date normalisation.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Hours is the span between clock-in and clock-out in hours, never negative.
func Hours(in, out time.Time) float64 {
	if out.Before(in) {
		return 0
	}
	return out.Sub(in).Hours()
}

// Overtime is the part of a day's work beyond the standard day.
func Overtime(hours float64) float64 {
	if hours <= StandardDailyHours {
		return 0
	}
	return hours - StandardDailyHours
}

// NightHours sums the overlap of [in, out] with every 22:00-05:00 window in loc.
func NightHours(in, out time.Time, loc *time.Location) float64 {
	if !out.After(in) {
		return 0
	}
	in, out = in.In(loc), out.In(loc)

	// The window that started the evening before in may still be open.
	y, m, d := in.Date()
	day := time.Date(y, m, d-1, 0, 0, 0, 0, loc)

	var total time.Duration
	for !day.After(out) {
		dy, dm, dd := day.Date()
		windowStart := time.Date(dy, dm, dd, NightStartHour, 0, 0, 0, loc)
		windowEnd := time.Date(dy, dm, dd+1, NightEndHour, 0, 0, 0, loc)
		total += overlap(in, out, windowStart, windowEnd)
		day = time.Date(dy, dm, dd+1, 0, 0, 0, 0, loc)
	}
	return total.Hours()
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// IsHoliday treats Saturdays and Sundays as non-working days.
func IsHoliday(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end time.Time) int {
	s, e := civil(start), civil(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// ClippedDays counts the days of [start, end] that fall inside [periodStart, periodEnd].
func ClippedDays(start, end, periodStart, periodEnd time.Time) int {
	s, e := civil(start), civil(end)
	ps, pe := civil(periodStart), civil(periodEnd)
	if s.Before(ps) {
		s = ps
	}
	if e.After(pe) {
		e = pe
	}
	return InclusiveDays(s, e)
}

// civil drops the clock and zone so DATE columns compare as calendar days.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RequiredBreakMinutes is the statutory minimum break for a day of the given length.
func RequiredBreakMinutes(hours float64) int {
	switch {
	case hours > 8:
		return 60
	case hours > 6:
		return 45
	default:
		return 0
	}
}

// ShortBreak reports an insufficient break. Recorded break minutes win; days
// without them fall back to the free-text marker in the notes.
func ShortBreak(hours float64, breakMinutes *int, notes *string, marker string) bool {
	if breakMinutes != nil {
		return *breakMinutes < RequiredBreakMinutes(hours)
	}
	if marker == "" || notes == nil {
		return false
	}
	return strings.Contains(*notes, marker)
}

// Round rounds an hour figure to two decimals for presentation.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Ratio returns part/whole rounded to four decimals, 0 when whole is 0.
// Average is total / count, 0 when count is 0.
func Average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func Ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(4).
		InexactFloat64()
}
