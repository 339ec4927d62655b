package worktime

import "time"

// Tally accumulates one person's attendance days. Open days (no clock-out)
// are counted apart and contribute no hours.
type Tally struct {
	WorkDays       int
	OpenDays       int
	Hours          float64
	OvertimeHours  float64
	NightHours     float64
	HolidayDays    int
	ShortBreakDays int
}

// DayRecord describes one attendance record for Add.
type DayRecord struct {
	Date         time.Time
	ClockIn      time.Time
	ClockOut     *time.Time
	BreakMinutes *int
	Notes        *string
}

// Add folds one record into the tally.
func (t *Tally) Add(rec DayRecord, loc *time.Location, shortBreakMarker string) {
	if IsHoliday(rec.Date) {
		t.HolidayDays++
	}
	if rec.ClockOut == nil {
		t.OpenDays++
		return
	}

	hours := Hours(rec.ClockIn, *rec.ClockOut)
	t.WorkDays++
	t.Hours += hours
	t.OvertimeHours += Overtime(hours)
	t.NightHours += NightHours(rec.ClockIn, *rec.ClockOut, loc)
	if ShortBreak(hours, rec.BreakMinutes, rec.Notes, shortBreakMarker) {
		t.ShortBreakDays++
	}
}

// Records is the number of records folded in, open ones included.
func (t Tally) Records() int {
	return t.WorkDays + t.OpenDays
}

// AverageHours is Hours over every record, 0 when there are none. Open
// records add to the count but not to Hours.
func (t Tally) AverageHours() float64 {
	return Average(t.Hours, t.Records())
}
