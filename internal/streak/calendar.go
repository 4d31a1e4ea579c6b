package streak

import "time"

// Calendar computes day boundaries in one fixed time zone. Every streak
// operation must use the same Calendar or counts drift.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// StartOfDay returns local midnight of t's calendar day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// DayGap returns the number of whole calendar days from from's date to
// to's date. Dates are compared in UTC so DST shifts cannot skew the result.
func (c Calendar) DayGap(from, to time.Time) int {
	fy, fm, fd := from.In(c.Location()).Date()
	ty, tm, td := to.In(c.Location()).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
