// Package toki computes the Japanese lunisolar calendar (旧暦) and its
// companion day attributes: the 24 solar terms (二十四節気), the rokuyō
// (六曜) six-day cycle, moon age, new-moon events, and sunrise/sunset.
//
// The authoritative day boundary is Japan Standard Time (UTC+09:00): every
// astronomical instant is assigned to the civil date it falls on in that
// offset, and all internal arithmetic stays in UTC until that attribution
// boundary. Results are stable JSON-shaped records.
//
// Basic usage with package-level functions (ephemeris resolved from the
// environment, Tokyo Station observer):
//
//	d, _ := toki.ParseCivilDate("2017-06-24")
//	rec, err := toki.Day(context.Background(), d)
//	// rec.Lunisolar.Label == "閏05/01", rec.Rokuyo == "大安"
//
// For isolated configuration, create a Calendar instance:
//
//	cal := toki.New(toki.WithEphemeris("de440s.bsp"), toki.WithObserver(43.06, 141.35))
//	rec, err := cal.Day(ctx, d)
//
// The ephemeris handle is acquired once per process per resolved ephemeris
// and shared by every Calendar; after initialization it is read-only.
package toki

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/toki-jp/toki/ephem"
)

// Default observer position: Tokyo Station.
const (
	DefaultLatitude  = 35.681236
	DefaultLongitude = 139.767125
)

// Calendar computes day and range records under a fixed configuration.
// Create one with [New]. All methods are safe for concurrent use; distinct
// requests share the process-wide ephemeris handle but no other state.
type Calendar struct {
	ephemeris     string // ephemeris name, "" = resolve from environment
	ephemerisPath string // explicit file path, overrides the name
	lat, lon      float64
	provider      Provider // non-nil when injected via WithProvider
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithEphemeris selects an ephemeris by name (e.g. "de440s.bsp", resolved
// against the data directory, or the reserved name "analytic" for the
// built-in series).
func WithEphemeris(name string) Option {
	return func(c *Calendar) { c.ephemeris = name }
}

// WithEphemerisPath selects an ephemeris by explicit file path. It takes
// precedence over every name-based resolution step.
func WithEphemerisPath(path string) Option {
	return func(c *Calendar) { c.ephemerisPath = path }
}

// WithObserver sets the observation point for sunrise/sunset.
func WithObserver(lat, lon float64) Option {
	return func(c *Calendar) { c.lat, c.lon = lat, lon }
}

// WithProvider injects an astronomy provider directly, bypassing ephemeris
// resolution. Intended for tests and custom oracles.
func WithProvider(p Provider) Option {
	return func(c *Calendar) { c.provider = p }
}

// New creates a Calendar. Construction is cheap: the ephemeris is loaded
// lazily on first query.
func New(opts ...Option) *Calendar {
	c := &Calendar{lat: DefaultLatitude, lon: DefaultLongitude}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observer returns a copy of c with a different observation point, sharing
// the same ephemeris handle.
func (c *Calendar) Observer(lat, lon float64) *Calendar {
	cc := *c
	cc.lat, cc.lon = lat, lon
	return &cc
}

// defaultCal is the package-level calendar used by top-level functions.
var defaultCal = New()

// Day returns the record for a single civil date.
func Day(ctx context.Context, d CivilDate) (*DayRecord, error) { return defaultCal.Day(ctx, d) }

// Range returns the record for an inclusive civil-date range.
func Range(ctx context.Context, start, end CivilDate) (*RangeRecord, error) {
	return defaultCal.Range(ctx, start, end)
}

// --- process-wide provider cache ---

var (
	providerMu    sync.Mutex
	providers     = map[string]Provider{}
	providerGroup singleflight.Group
)

// providerFor opens (or reuses) the provider for a resolved ephemeris.
// singleflight guarantees a single initialization per key even under
// concurrent first use; after that the handle is immutable and shared.
func providerFor(ref ephem.Ref) (Provider, error) {
	key := ref.Key()
	providerMu.Lock()
	if p, ok := providers[key]; ok {
		providerMu.Unlock()
		return p, nil
	}
	providerMu.Unlock()

	v, err, _ := providerGroup.Do(key, func() (any, error) {
		p, err := ephem.Open(ref)
		if err != nil {
			return nil, err
		}
		providerMu.Lock()
		providers[key] = p
		providerMu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEphemerisUnavailable, err)
	}
	return v.(Provider), nil
}

// oracle resolves the calendar's engine, loading the ephemeris on first use.
func (c *Calendar) oracle() (engine, error) {
	if c.provider != nil {
		return engine{p: c.provider}, nil
	}
	p, err := providerFor(ephem.Resolve(c.ephemeris, c.ephemerisPath))
	if err != nil {
		return engine{}, err
	}
	return engine{p: p}, nil
}

// Day computes the record for one civil date. It is exactly the single
// element of the equivalent one-day range.
func (c *Calendar) Day(ctx context.Context, d CivilDate) (*DayRecord, error) {
	days, _, _, _, err := c.build(ctx, d, d)
	if err != nil {
		return nil, err
	}
	return &days[0], nil
}

// Range computes the record for an inclusive date range.
func (c *Calendar) Range(ctx context.Context, start, end CivilDate) (*RangeRecord, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidInput, end, start)
	}
	days, sekki, phases, meta, err := c.build(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if sekki == nil {
		sekki = []SekkiEvent{}
	}
	if phases == nil {
		phases = []PhaseEvent{}
	}
	return &RangeRecord{
		Meta:   meta,
		Range:  DateRange{Start: start.String(), End: end.String()},
		Days:   days,
		Events: RangeEvents{Sekki: sekki, MoonPhases: phases},
	}, nil
}

// build is the shared assembly path for Day and Range: it resolves the
// month table once, enumerates the range's events once, and derives each
// day record from those, so a one-day query and the same day inside a
// range produce identical JSON.
func (c *Calendar) build(ctx context.Context, start, end CivilDate) ([]DayRecord, []SekkiEvent, []PhaseEvent, Meta, error) {
	if err := validateObserver(c.lat, c.lon); err != nil {
		return nil, nil, nil, Meta{}, err
	}
	e, err := c.oracle()
	if err != nil {
		return nil, nil, nil, Meta{}, err
	}
	meta := Meta{TZ: "Asia/Tokyo", DayBasis: "jst", Ephemeris: e.p.Name()}

	if err := checkCoverage(e.p, start, end); err != nil {
		return nil, nil, nil, Meta{}, err
	}

	table, err := e.buildMonths(ctx, start, end)
	if err != nil {
		return nil, nil, nil, Meta{}, translateProviderErr(err)
	}

	sekki, err := sekkiEventsBetween(ctx, e, start, end)
	if err != nil {
		return nil, nil, nil, Meta{}, translateProviderErr(err)
	}
	phases, err := phaseEventsBetween(ctx, e, start, end)
	if err != nil {
		return nil, nil, nil, Meta{}, translateProviderErr(err)
	}

	var days []DayRecord
	for d := start; !d.After(end); d = d.AddDays(1) {
		rec, err := c.assembleDay(ctx, e, meta, table, d, sekki, phases)
		if err != nil {
			return nil, nil, nil, Meta{}, translateProviderErr(err)
		}
		days = append(days, rec)
	}
	return days, sekki, phases, meta, nil
}

// assembleDay composes one day record from the shared range state.
func (c *Calendar) assembleDay(ctx context.Context, e engine, meta Meta, table *monthTable, d CivilDate, sekki []SekkiEvent, phases []PhaseEvent) (DayRecord, error) {
	ld, err := table.lunisolarDate(d)
	if err != nil {
		return DayRecord{}, err
	}
	label, err := rokuyo(ld.Month, ld.Day)
	if err != nil {
		return DayRecord{}, err
	}

	var sekkiInfo *SekkiInfo
	for _, ev := range sekki {
		if ev.DateJST != d.String() {
			continue
		}
		if sekkiInfo == nil {
			sekkiInfo = &SekkiInfo{}
		}
		sekkiInfo.Events = append(sekkiInfo.Events, ev)
	}
	if sekkiInfo != nil {
		sekkiInfo.Primary = &sekkiInfo.Events[0]
	}

	age, err := e.moonAge(ctx, d)
	if err != nil {
		return DayRecord{}, err
	}

	var phaseEvent *PhaseEvent
	for i := range phases {
		if phases[i].DateJST == d.String() {
			phaseEvent = &phases[i]
			break
		}
	}

	rise, set := e.sunriseSunset(d, c.lat, c.lon)
	var sunrise, sunset *string
	if rise != nil {
		s := formatJST(*rise)
		sunrise = &s
	}
	if set != nil {
		s := formatJST(*set)
		sunset = &s
	}

	return DayRecord{
		Meta:      meta,
		Date:      d.String(),
		Lunisolar: lunisolarBlock(ld),
		Rokuyo:    label,
		Sekki:     sekkiInfo,
		Astronomy: Astronomy{
			MoonAge:    math.Round(age*1e6) / 1e6,
			PhaseEvent: phaseEvent,
			Sunrise:    sunrise,
			Sunset:     sunset,
		},
	}, nil
}

// sekkiEventsBetween lists the solar terms whose JST date falls in
// [start, end]. The UTC search window is padded by two days on each side so
// boundary attribution never misses a crossing.
func sekkiEventsBetween(ctx context.Context, e engine, start, end CivilDate) ([]SekkiEvent, error) {
	t0 := start.Midnight().UTC().Add(-2 * 24 * time.Hour)
	t1 := end.AddDays(1).Midnight().UTC().Add(2 * 24 * time.Hour)
	terms, err := e.solarTermsBetween(ctx, t0, t1)
	if err != nil {
		return nil, err
	}
	var out []SekkiEvent
	for _, st := range terms {
		d := civilDateOf(st.AtUTC)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, SekkiEvent{
			Name:    st.Name,
			Degree:  st.Degree,
			AtJST:   formatJST(st.AtUTC),
			DateJST: d.String(),
		})
	}
	return out, nil
}

// phaseEventsBetween lists the new moons whose JST date falls in
// [start, end]. The window is exactly the JST day span, so every hit
// attributes inside the range.
func phaseEventsBetween(ctx context.Context, e engine, start, end CivilDate) ([]PhaseEvent, error) {
	t0 := start.Midnight()
	t1 := end.AddDays(1).Midnight()
	moons, err := e.newMoonsBetween(ctx, t0, t1)
	if err != nil {
		return nil, err
	}
	var out []PhaseEvent
	for _, nm := range moons {
		out = append(out, PhaseEvent{
			Type:    "new_moon",
			AtJST:   formatJST(nm),
			DateJST: civilDateOf(nm).String(),
		})
	}
	return out, nil
}

// validateObserver bounds the observation point.
func validateObserver(lat, lon float64) error {
	if lat < -90 || lat > 90 || math.IsNaN(lat) {
		return fmt.Errorf("%w: latitude %v out of [-90, 90]", ErrInvalidInput, lat)
	}
	if lon < -180 || lon > 180 || math.IsNaN(lon) {
		return fmt.Errorf("%w: longitude %v out of [-180, 180]", ErrInvalidInput, lon)
	}
	return nil
}

// checkCoverage verifies that the padded computation window (the solstice
// anchors a year beyond each end plus scan margins) fits the ephemeris.
func checkCoverage(p Provider, start, end CivilDate) error {
	lo, hi := p.Coverage()
	needLo := time.Date(start.Year-1, time.November, 1, 0, 0, 0, 0, time.UTC).Add(-50 * 24 * time.Hour)
	needHi := time.Date(end.Year+2, time.March, 1, 0, 0, 0, 0, time.UTC).Add(50 * 24 * time.Hour)
	if needLo.Before(lo) || needHi.After(hi) {
		return fmt.Errorf("%w: resolving %s..%s needs ephemeris coverage %s..%s but %q covers %s..%s",
			ErrOutOfEphemerisRange, start, end,
			needLo.Format("2006-01-02"), needHi.Format("2006-01-02"),
			p.Name(), lo.Format("2006-01-02"), hi.Format("2006-01-02"))
	}
	return nil
}

// translateProviderErr maps ephem sentinel errors onto this package's
// error kinds so callers can match with errors.Is uniformly.
func translateProviderErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ephem.ErrOutOfRange) {
		return fmt.Errorf("%w: %v", ErrOutOfEphemerisRange, err)
	}
	return err
}
