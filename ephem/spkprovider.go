package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/toki-jp/toki/internal/spk"
)

// NAIF body ids used by the calendar.
const (
	naifSSB   = 0
	naifEMB   = 3
	naifSun   = 10
	naifMoon  = 301
	naifEarth = 399
)

// obliquityJ2000 is the mean obliquity of the J2000 ecliptic in degrees.
const obliquityJ2000 = 23.43929111

// spkPairs are the (target, center) chains needed for geocentric Sun and
// Moon positions.
var spkPairs = [][2]int{
	{naifEMB, naifSSB},
	{naifSun, naifSSB},
	{naifMoon, naifEMB},
	{naifEarth, naifEMB},
}

// SPKProvider computes apparent longitudes from a JPL SPK kernel
// (de440s.bsp and kin). The kernel is read once at Open and immutable
// afterwards, so the provider is safe for concurrent use.
type SPKProvider struct {
	name string
	file *spk.File

	covStart time.Time
	covEnd   time.Time
}

// OpenSPK loads a kernel and verifies it carries the Sun/Moon/Earth
// segments the calendar needs.
func OpenSPK(name, path string) (*SPKProvider, error) {
	f, err := spk.Open(path)
	if err != nil {
		return nil, err
	}
	et0, et1, err := f.Coverage(spkPairs)
	if err != nil {
		return nil, err
	}
	return &SPKProvider{
		name:     name,
		file:     f,
		covStart: utcFromET(et0),
		covEnd:   utcFromET(et1),
	}, nil
}

// Name implements the provider contract.
func (p *SPKProvider) Name() string { return p.name }

// Coverage implements the provider contract.
func (p *SPKProvider) Coverage() (time.Time, time.Time) { return p.covStart, p.covEnd }

func (p *SPKProvider) checkRange(t time.Time) error {
	if t.Before(p.covStart) || t.After(p.covEnd) {
		return fmt.Errorf("%w: %s not in %s..%s (%s)", ErrOutOfRange,
			t.UTC().Format(time.RFC3339),
			p.covStart.Format("2006-01-02"), p.covEnd.Format("2006-01-02"), p.name)
	}
	return nil
}

// SunLongitude returns the apparent solar ecliptic longitude in degrees.
func (p *SPKProvider) SunLongitude(t time.Time) (float64, error) {
	if err := p.checkRange(t); err != nil {
		return 0, err
	}
	et := etSeconds(t)
	sun, err := p.file.Position(naifSun, naifSSB, et)
	if err != nil {
		return 0, err
	}
	emb, err := p.file.Position(naifEMB, naifSSB, et)
	if err != nil {
		return 0, err
	}
	earth, err := p.file.Position(naifEarth, naifEMB, et)
	if err != nil {
		return 0, err
	}
	var geo [3]float64
	for i := range geo {
		geo[i] = sun[i] - emb[i] - earth[i]
	}
	T := julianCenturiesTT(t)
	// Annual aberration shifts the apparent sun ~20.5" behind the
	// geometric position.
	return norm360(eclipticOfDateLongitude(geo, T) - 0.00569), nil
}

// MoonLongitude returns the apparent lunar ecliptic longitude in degrees.
func (p *SPKProvider) MoonLongitude(t time.Time) (float64, error) {
	if err := p.checkRange(t); err != nil {
		return 0, err
	}
	et := etSeconds(t)
	moon, err := p.file.Position(naifMoon, naifEMB, et)
	if err != nil {
		return 0, err
	}
	earth, err := p.file.Position(naifEarth, naifEMB, et)
	if err != nil {
		return 0, err
	}
	var geo [3]float64
	for i := range geo {
		geo[i] = moon[i] - earth[i]
	}
	return norm360(eclipticOfDateLongitude(geo, julianCenturiesTT(t))), nil
}

// SunriseSunset implements the provider contract via the shared
// pass-through.
func (*SPKProvider) SunriseSunset(year int, month time.Month, day int, lat, lon float64) (time.Time, time.Time) {
	return riseSet(year, month, day, lat, lon)
}

// eclipticOfDateLongitude converts an ICRF equatorial position vector to
// ecliptic-of-date longitude in degrees: rotate to the J2000 ecliptic,
// then apply general precession in longitude and nutation. Accurate to a
// few arcseconds across the kernel coverage, far inside the minute-level
// contract.
func eclipticOfDateLongitude(v [3]float64, T float64) float64 {
	eps := obliquityJ2000 * degToRad
	ye := v[1]*math.Cos(eps) + v[2]*math.Sin(eps)
	lonJ2000 := math.Atan2(ye, v[0]) / degToRad

	precession := T * (1.3969713 + T*0.0003086)
	return norm360(lonJ2000 + precession + nutationLongitude(T))
}
