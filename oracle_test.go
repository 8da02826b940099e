package toki

import (
	"time"
)

// fakeProvider is a deterministic oracle with uniform circular motion:
// the sun advances 360° per tropical year from 0° at fakeEpoch, and the
// lunar phase advances 360° per synodic month from a new moon at the same
// instant. Every crossing time therefore has a closed form the tests can
// compute independently.
type fakeProvider struct{}

var fakeEpoch = time.Date(2000, time.March, 20, 12, 0, 0, 0, time.UTC)

const (
	fakeTropicalDays = 365.2422
	fakeSynodicDays  = 29.530588
)

func fakeDays(t time.Time) float64 {
	return t.Sub(fakeEpoch).Seconds() / 86400
}

func (fakeProvider) SunLongitude(t time.Time) (float64, error) {
	return norm360(fakeDays(t) * 360 / fakeTropicalDays), nil
}

func (fakeProvider) MoonLongitude(t time.Time) (float64, error) {
	d := fakeDays(t)
	return norm360(d*360/fakeTropicalDays + d*360/fakeSynodicDays), nil
}

func (fakeProvider) SunriseSunset(year int, month time.Month, day int, lat, _ float64) (time.Time, time.Time) {
	if lat >= 66 || lat <= -66 {
		return time.Time{}, time.Time{}
	}
	rise := time.Date(year, month, day, 6, 0, 0, 0, jstZone).UTC()
	set := time.Date(year, month, day, 18, 0, 0, 0, jstZone).UTC()
	return rise, set
}

func (fakeProvider) Coverage() (time.Time, time.Time) {
	return time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (fakeProvider) Name() string { return "fake" }

// fakeNewMoon returns the k-th new moon of the fake oracle.
func fakeNewMoon(k int) time.Time {
	return fakeEpoch.Add(time.Duration(float64(k) * fakeSynodicDays * 86400 * float64(time.Second)))
}

// fakeSunCrossing returns the first instant at or after fakeEpoch at which
// the fake sun reaches deg.
func fakeSunCrossing(deg float64) time.Time {
	return fakeEpoch.Add(time.Duration(deg / 360 * fakeTropicalDays * 86400 * float64(time.Second)))
}

func fakeEngine() engine { return engine{p: fakeProvider{}} }
