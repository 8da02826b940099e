package toki

import "fmt"

// Meta identifies the conventions a record was computed under.
type Meta struct {
	TZ        string `json:"tz"`
	DayBasis  string `json:"day_basis"`
	Ephemeris string `json:"ephemeris"`
}

// Lunisolar is the 旧暦 block of a day record.
type Lunisolar struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Leap       bool   `json:"leap"`
	MonthLabel string `json:"month_label"` // "MM" or "閏MM"
	Label      string `json:"label"`       // "<month_label>/DD"
	MonthName  string `json:"month_name"`  // "五月", "閏五月", ...
}

// SekkiEvent is one solar-term crossing attributed to a JST date.
type SekkiEvent struct {
	Name    string `json:"name"`
	Degree  int    `json:"degree"`
	AtJST   string `json:"at_jst"`
	DateJST string `json:"date_jst"`
}

// SekkiInfo groups the solar terms falling on one day. Usually a day has
// zero or one, but the shape allows more, so events is a list.
type SekkiInfo struct {
	Primary *SekkiEvent  `json:"primary"`
	Events  []SekkiEvent `json:"events"`
}

// PhaseEvent is a lunar phase event attributed to a JST date. Only
// new moons are emitted; other phases are extension room.
type PhaseEvent struct {
	Type    string `json:"type"`
	AtJST   string `json:"at_jst"`
	DateJST string `json:"date_jst"`
}

// Astronomy is the per-day astronomy block.
type Astronomy struct {
	MoonAge    float64     `json:"moon_age"`
	PhaseEvent *PhaseEvent `json:"phase_event"`
	Sunrise    *string     `json:"sunrise"`
	Sunset     *string     `json:"sunset"`
}

// DayRecord is the stable JSON record for a single civil date.
type DayRecord struct {
	Meta      Meta       `json:"meta"`
	Date      string     `json:"date"`
	Lunisolar Lunisolar  `json:"lunisolar"`
	Rokuyo    string     `json:"rokuyo"`
	Sekki     *SekkiInfo `json:"sekki"`
	Astronomy Astronomy  `json:"astronomy"`
}

// RangeEvents are the flat, time-sorted event lists of a range record.
type RangeEvents struct {
	Sekki      []SekkiEvent `json:"sekki"`
	MoonPhases []PhaseEvent `json:"moon_phases"`
}

// DateRange is the inclusive civil-date range of a range record.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RangeRecord is the stable JSON record for an inclusive date range.
type RangeRecord struct {
	Meta   Meta        `json:"meta"`
	Range  DateRange   `json:"range"`
	Days   []DayRecord `json:"days"`
	Events RangeEvents `json:"events"`
}

// kanjiMonths indexed by month number 1..12.
var kanjiMonths = [13]string{"",
	"一月", "二月", "三月", "四月", "五月", "六月",
	"七月", "八月", "九月", "十月", "十一月", "十二月",
}

// monthLabel renders the zero-padded month with the 閏 prefix when leap.
func monthLabel(month int, leap bool) string {
	if leap {
		return fmt.Sprintf("閏%02d", month)
	}
	return fmt.Sprintf("%02d", month)
}

// monthName renders the kanji month name with the 閏 prefix when leap.
func monthName(month int, leap bool) string {
	if leap {
		return "閏" + kanjiMonths[month]
	}
	return kanjiMonths[month]
}

// lunisolarBlock derives the display labels for a resolved lunisolar date.
func lunisolarBlock(ld LunisolarDate) Lunisolar {
	ml := monthLabel(ld.Month, ld.Leap)
	return Lunisolar{
		Year:       ld.Year,
		Month:      ld.Month,
		Day:        ld.Day,
		Leap:       ld.Leap,
		MonthLabel: ml,
		Label:      fmt.Sprintf("%s/%02d", ml, ld.Day),
		MonthName:  monthName(ld.Month, ld.Leap),
	}
}
