package toki

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// lunisolarErrorf wraps ErrLunisolarResolutionFailed with detail.
func lunisolarErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLunisolarResolutionFailed, fmt.Sprintf(format, args...))
}

// lunarMonth is one resolved lunisolar month: the half-open span between
// two consecutive new moons, carrying its number, leap flag, and year label.
type lunarMonth struct {
	Year  int
	Month int // 1..12; a leap month repeats its predecessor's number
	Leap  bool

	Start time.Time // new moon, UTC
	End   time.Time // next new moon, UTC

	// StartDate is the JST civil date of Start; lunar day 1 of this month.
	StartDate CivilDate
}

// monthTable is the resolved month sequence for a padded range, plus the
// sorted start dates used for day lookup. Consecutive months tile the
// instant axis without gaps or overlap.
type monthTable struct {
	months []lunarMonth
	starts []CivilDate
}

// LunisolarDate is the 旧暦 date of one civil day.
type LunisolarDate struct {
	Year  int
	Month int
	Day   int
	Leap  bool
}

// winterSolstice finds the 冬至 instant (solar longitude 270°) for the
// given Gregorian year by searching the Dec 1 .. Feb 1 window.
func (e engine) winterSolstice(ctx context.Context, year int) (time.Time, error) {
	a := time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(year+1, time.February, 1, 0, 0, 0, 0, time.UTC)
	xs, err := e.solarLongitudeCrossings(ctx, a, b, 270)
	if err != nil {
		return time.Time{}, err
	}
	if len(xs) == 0 {
		return time.Time{}, lunisolarErrorf("no 冬至 found for year %d", year)
	}
	return xs[0], nil
}

// spanIndex returns i such that moons[i] <= t < moons[i+1].
func spanIndex(moons []time.Time, t time.Time) (int, error) {
	i := sort.Search(len(moons), func(i int) bool { return moons[i].After(t) }) - 1
	if i < 0 || i+1 >= len(moons) {
		return 0, lunisolarErrorf("instant %s not bracketed by the new-moon series", formatJST(t))
	}
	return i, nil
}

// buildMonths resolves every lunisolar month needed to answer queries in
// [startD, endD]. The 冬至 anchors run from the year before startD to the
// year after endD, so every queried date lies inside a complete
// 冬至-to-冬至 segment and leap placement is always decided over whole
// segments.
func (e engine) buildMonths(ctx context.Context, startD, endD CivilDate) (*monthTable, error) {
	firstYear := startD.Year - 1
	lastYear := endD.Year + 1

	var solstices []time.Time
	for y := firstYear; y <= lastYear; y++ {
		ws, err := e.winterSolstice(ctx, y)
		if err != nil {
			return nil, err
		}
		solstices = append(solstices, ws)
	}

	const pad = 45 * 24 * time.Hour
	moons, err := e.newMoonsBetween(ctx, solstices[0].Add(-pad), solstices[len(solstices)-1].Add(pad))
	if err != nil {
		return nil, err
	}
	if len(moons) < 2 {
		return nil, lunisolarErrorf("new-moon series too short")
	}

	majors, err := e.majorTermsBetween(ctx, moons[0], moons[len(moons)-1])
	if err != nil {
		return nil, err
	}

	var table monthTable
	for k := 0; k+1 < len(solstices); k++ {
		months, err := monthsBetweenAnchors(moons, majors, solstices[k], solstices[k+1])
		if err != nil {
			return nil, err
		}
		table.months = append(table.months, months...)
	}

	sort.Slice(table.months, func(i, j int) bool { return table.months[i].Start.Before(table.months[j].Start) })
	dedup := table.months[:0]
	for _, m := range table.months {
		if n := len(dedup); n > 0 && dedup[n-1].Start.Equal(m.Start) {
			continue
		}
		dedup = append(dedup, m)
	}
	table.months = dedup

	for i, m := range table.months {
		if i > 0 && !table.months[i-1].End.Equal(m.Start) {
			return nil, lunisolarErrorf("month sequence has a gap before %s", formatJST(m.Start))
		}
		table.starts = append(table.starts, m.StartDate)
	}
	return &table, nil
}

// monthsBetweenAnchors numbers the 12 or 13 lunar spans between two
// consecutive 冬至 instants. The span containing the first 冬至 is month
// 11; numbering then advances month by month (12 wraps to 1), except that
// the leap month repeats its predecessor's number without advancing.
//
// A 13-span segment needs exactly one leap insertion: the first span
// containing no 中気 takes it. Later 中気-free spans, if any, keep regular
// numbers because the single insertion consumes the 13-month surplus.
func monthsBetweenAnchors(moons []time.Time, majors []SolarTerm, ws0, ws1 time.Time) ([]lunarMonth, error) {
	ia, err := spanIndex(moons, ws0)
	if err != nil {
		return nil, err
	}
	ib, err := spanIndex(moons, ws1)
	if err != nil {
		return nil, err
	}
	n := ib - ia
	if n != 12 && n != 13 {
		return nil, lunisolarErrorf("%d months between 冬至 %s and %s (want 12 or 13)",
			n, formatJST(ws0), formatJST(ws1))
	}

	leapPos := -1
	if n == 13 {
		// Position 0 holds the anchoring 冬至 and is month 11 by
		// definition, so the insertion point is the first 中気-free span
		// after it.
		for pos := 1; pos < n; pos++ {
			if countMajorsIn(majors, moons[ia+pos], moons[ia+pos+1]) == 0 {
				leapPos = pos
				break
			}
		}
		if leapPos < 0 {
			return nil, lunisolarErrorf("13 months after 冬至 %s but no valid leap candidate", formatJST(ws0))
		}
	}

	anchorYear := civilDateOf(ws0).Year

	out := make([]lunarMonth, 0, n)
	cur := 11
	for pos := 0; pos < n; pos++ {
		leap := pos == leapPos
		if pos > 0 && !leap {
			cur++
			if cur > 12 {
				cur = 1
			}
		}
		start := moons[ia+pos]
		startDate := civilDateOf(start)
		year := startDate.Year
		if cur >= 11 {
			year = anchorYear
		}
		out = append(out, lunarMonth{
			Year:      year,
			Month:     cur,
			Leap:      leap,
			Start:     start,
			End:       moons[ia+pos+1],
			StartDate: startDate,
		})
	}
	return out, nil
}

// countMajorsIn counts the 中気 belonging to the lunar month [a, b) on the
// JST day basis: a term belongs to the month whose civil-day window
// contains the term's JST date. This matches how every other attribution in
// the system works; raw UTC containment would misplace a term that falls
// between the new-moon instant and the JST midnight opening the month (e.g.
// 大暑 2017, which lands on the first civil day of month 6 about 18 hours
// before that month's new moon).
func countMajorsIn(majors []SolarTerm, a, b time.Time) int {
	aDay := civilDateOf(a)
	bDay := civilDateOf(b)
	n := 0
	for _, st := range majors {
		d := civilDateOf(st.AtUTC)
		if !d.Before(aDay) && d.Before(bDay) {
			n++
		}
	}
	return n
}

// lunisolarDate locates the month whose start date covers d and derives the
// lunar day as the calendar-day offset from the month's first day.
func (t *monthTable) lunisolarDate(d CivilDate) (LunisolarDate, error) {
	i := sort.Search(len(t.starts), func(i int) bool { return t.starts[i].After(d) }) - 1
	if i < 0 || i >= len(t.months) {
		return LunisolarDate{}, lunisolarErrorf("date %s outside the resolved month window", d)
	}
	m := t.months[i]
	day := m.StartDate.DaysUntil(d) + 1
	if day < 1 || day > 30 {
		return LunisolarDate{}, lunisolarErrorf("date %s maps to lunar day %d in month starting %s", d, day, m.StartDate)
	}
	return LunisolarDate{Year: m.Year, Month: m.Month, Day: day, Leap: m.Leap}, nil
}
