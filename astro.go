package toki

import (
	"context"
	"math"
	"time"
)

// Provider is the low-level astronomy capability the engine is built on.
// Implementations must be deterministic and side-effect-free for a fixed
// ephemeris: the same instant always yields the same longitude. All instants
// are interpreted in UTC regardless of their location.
//
// Two production variants live in the ephem package (an SPK-backed reader
// and a file-free analytic series); tests use a deterministic fake.
type Provider interface {
	// SunLongitude returns the apparent ecliptic longitude of the Sun in
	// degrees, normalized to [0, 360).
	SunLongitude(t time.Time) (float64, error)

	// MoonLongitude returns the apparent ecliptic longitude of the Moon in
	// degrees, normalized to [0, 360).
	MoonLongitude(t time.Time) (float64, error)

	// SunriseSunset returns the UTC sunrise and sunset instants for the
	// given local calendar day at the observer position. A zero time means
	// the event does not occur (polar day or night); that is not an error.
	SunriseSunset(year int, month time.Month, day int, lat, lon float64) (rise, set time.Time)

	// Coverage reports the validity window of the underlying ephemeris.
	Coverage() (start, end time.Time)

	// Name identifies the ephemeris for record metadata, e.g. "de440s.bsp"
	// or "analytic".
	Name() string
}

// norm360 maps an angle in degrees to [0, 360).
func norm360(deg float64) float64 {
	x := math.Mod(deg, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// angDiff180 maps an angle in degrees to (-180, 180].
func angDiff180(deg float64) float64 {
	x := norm360(deg + 180)
	if x == 0 {
		return 180
	}
	return x - 180
}

// engine is the astronomy oracle facade over a Provider: it derives lunar
// phase and moon age from the longitude pair and forwards everything else.
// It holds no mutable state and may be shared across requests.
type engine struct {
	p Provider
}

func (e engine) sunLongitude(t time.Time) (float64, error) {
	return e.p.SunLongitude(t)
}

// moonPhase returns (moon - sun) longitude mod 360 in [0, 360):
// 0 = new, 90 = first quarter, 180 = full, 270 = last quarter.
func (e engine) moonPhase(t time.Time) (float64, error) {
	ml, err := e.p.MoonLongitude(t)
	if err != nil {
		return 0, err
	}
	sl, err := e.p.SunLongitude(t)
	if err != nil {
		return 0, err
	}
	return norm360(ml - sl), nil
}

// moonAge returns the days elapsed since the most recent new moon at JST
// 00:00 of the given civil date.
func (e engine) moonAge(ctx context.Context, d CivilDate) (float64, error) {
	at := d.Midnight()
	// One synodic month of lookback plus slack always contains the
	// previous new moon.
	moons, err := e.newMoonsBetween(ctx, at.Add(-36*24*time.Hour), at.Add(time.Minute))
	if err != nil {
		return 0, err
	}
	var last time.Time
	for _, nm := range moons {
		if !nm.After(at) {
			last = nm
		}
	}
	if last.IsZero() {
		return 0, lunisolarErrorf("no new moon found within 36 days before %s", d)
	}
	return at.Sub(last).Seconds() / 86400, nil
}

// sunriseSunset forwards to the provider and converts the zero-time
// sentinel into nil pointers.
func (e engine) sunriseSunset(d CivilDate, lat, lon float64) (rise, set *time.Time) {
	r, s := e.p.SunriseSunset(d.Year, d.Month, d.Day, lat, lon)
	if !r.IsZero() {
		rise = &r
	}
	if !s.IsZero() {
		set = &s
	}
	return rise, set
}
