package ephem

import "time"

// Time scale helpers: calendar computations run on Terrestrial Time (TT),
// while the public contract speaks UTC. TT = UTC + 32.184s + leap seconds
// since 1972; before the leap-second era a long-term ΔT fit is used.

const (
	unixEpochJD   = 2440587.5 // Julian date of 1970-01-01T00:00:00
	j2000JD       = 2451545.0 // Julian date of 2000-01-01T12:00:00 TT
	secondsPerDay = 86400
	ttMinusTAI    = 32.184
)

// leapSecondSteps lists the instants (Unix UTC) at which the cumulative
// TAI-UTC offset changed, newest first.
var leapSecondSteps = []struct {
	unix  int64
	total float64
}{
	{1483228800, 37}, // 2017-01-01
	{1435708800, 36}, // 2015-07-01
	{1341100800, 35}, // 2012-07-01
	{1230768000, 34}, // 2009-01-01
	{1136073600, 33}, // 2006-01-01
	{915148800, 32},  // 1999-01-01
	{867715200, 31},  // 1997-07-01
	{820454400, 30},  // 1996-01-01
	{773020800, 29},  // 1994-07-01
	{741484800, 28},  // 1993-07-01
	{709948800, 27},  // 1992-07-01
	{662688000, 26},  // 1991-01-01
	{631152000, 25},  // 1990-01-01
	{567993600, 24},  // 1988-01-01
	{489024000, 23},  // 1985-07-01
	{425865600, 22},  // 1983-07-01
	{394329600, 21},  // 1982-07-01
	{362793600, 20},  // 1981-07-01
	{315532800, 19},  // 1980-01-01
	{283996800, 18},  // 1979-01-01
	{252460800, 17},  // 1978-01-01
	{220924800, 16},  // 1977-01-01
	{189302400, 15},  // 1976-01-01
	{157766400, 14},  // 1975-01-01
	{126230400, 13},  // 1974-01-01
	{94694400, 12},   // 1973-01-01
	{78796800, 11},   // 1972-07-01
	{63072000, 10},   // 1972-01-01
}

// taiMinusUTC returns the cumulative leap-second offset at t, or -1 when t
// predates the leap-second era.
func taiMinusUTC(t time.Time) float64 {
	u := t.Unix()
	for _, step := range leapSecondSteps {
		if u >= step.unix {
			return step.total
		}
	}
	return -1
}

// deltaT returns TT - UTC in seconds at t.
func deltaT(t time.Time) float64 {
	if leaps := taiMinusUTC(t); leaps >= 0 {
		return ttMinusTAI + leaps
	}
	// Long-term fit for the pre-1972 tail of the validity window.
	y := float64(t.Year()) + float64(t.YearDay())/365.25
	u := (y - 1820) / 100
	return -20 + 32*u*u
}

// julianDayTT returns the Julian date of t on the TT scale.
func julianDayTT(t time.Time) float64 {
	utcSeconds := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return (utcSeconds+deltaT(t))/secondsPerDay + unixEpochJD
}

// julianCenturiesTT returns Julian centuries since J2000.0 on the TT scale.
func julianCenturiesTT(t time.Time) float64 {
	return (julianDayTT(t) - j2000JD) / 36525
}

// etSeconds returns seconds past J2000 on the TT scale, the time argument
// of SPK Chebyshev segments (TDB-TT stays under 2 ms and is ignored).
func etSeconds(t time.Time) float64 {
	return (julianDayTT(t) - j2000JD) * secondsPerDay
}

// utcFromET approximates the UTC instant of an ET offset; used only to
// report ephemeris coverage windows, where sub-minute precision is moot.
func utcFromET(et float64) time.Time {
	const j2000Unix = 946728000 // 2000-01-01T12:00:00Z
	return time.Unix(j2000Unix+int64(et-69.184), 0).UTC()
}
