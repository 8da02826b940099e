package toki

import (
	"fmt"
	"time"
)

// jstZone is the Asia/Tokyo timezone (UTC+9). It is the sole day basis of
// this package: every instant surfaced to users is formatted with offset
// +09:00, and every instant-to-date attribution goes through it.
var jstZone = time.FixedZone("Asia/Tokyo", 9*60*60)

// CivilDate is a (year, month, day) triple in the proleptic Gregorian
// calendar, interpreted in JST. It is comparable and usable as a map key.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCivilDate parses a YYYY-MM-DD string into a CivilDate.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.ParseInLocation("2006-01-02", s, jstZone)
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: bad date %q (expected YYYY-MM-DD)", ErrInvalidInput, s)
	}
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}, nil
}

// civilDateOf converts an instant to its CivilDate by first normalizing to
// JST. This is the canonical attribution rule: an instant belongs to the
// calendar date its JST wall-clock shows, regardless of the input offset.
func civilDateOf(t time.Time) CivilDate {
	jt := t.In(jstZone)
	y, m, d := jt.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// Midnight returns the instant of JST 00:00 on d.
func (d CivilDate) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, jstZone)
}

// String formats d as YYYY-MM-DD.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays returns d shifted by n calendar days (n may be negative).
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, jstZone)
	y, m, dd := t.Date()
	return CivilDate{Year: y, Month: m, Day: dd}
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

// DaysUntil returns the number of calendar days from d to other
// (negative when other is earlier).
func (d CivilDate) DaysUntil(other CivilDate) int {
	a := d.Midnight()
	b := other.Midnight()
	return int(b.Sub(a) / (24 * time.Hour))
}

// formatJST renders an instant as YYYY-MM-DDTHH:MM:SS+09:00.
func formatJST(t time.Time) string {
	return t.In(jstZone).Format("2006-01-02T15:04:05-07:00")
}
