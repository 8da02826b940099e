package toki

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSekkiNames_Table(t *testing.T) {
	require.Len(t, sekkiNames, 24)

	want := map[int]string{
		0: "春分", 90: "夏至", 180: "秋分", 270: "冬至",
		315: "立春", 45: "立夏", 135: "立秋", 225: "立冬",
	}
	for deg, name := range want {
		assert.Equal(t, name, sekkiNames[deg], "degree %d", deg)
	}

	for deg := 0; deg < 360; deg += 15 {
		st := SolarTerm{Name: sekkiNames[deg], Degree: deg}
		assert.NotEmpty(t, st.Name, "degree %d", deg)
		assert.Equal(t, deg%30 == 0, st.Major(), "中気 iff multiple of 30°: %d", deg)
	}
}

func TestSolarLongitudeCrossings_ClosedForm(t *testing.T) {
	e := fakeEngine()
	// The fake sun passes 90° a quarter tropical year after fakeEpoch.
	want := fakeSunCrossing(90)
	got, err := e.solarLongitudeCrossings(context.Background(), want.Add(-10*24*time.Hour), want.Add(10*24*time.Hour), 90)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.WithinDuration(t, want, got[0], time.Second)
}

func TestSolarTermsBetween_OneYear(t *testing.T) {
	e := fakeEngine()
	start := fakeEpoch.Add(-time.Hour)
	end := start.Add(time.Duration(fakeTropicalDays * 86400 * float64(time.Second)))

	terms, err := e.solarTermsBetween(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, terms, 24, "one tropical year holds each term exactly once")

	seen := map[int]bool{}
	majors := 0
	for i, st := range terms {
		if i > 0 {
			assert.True(t, st.AtUTC.After(terms[i-1].AtUTC), "terms must be time-sorted")
		}
		assert.False(t, seen[st.Degree], "degree %d twice", st.Degree)
		seen[st.Degree] = true
		assert.Equal(t, sekkiNames[st.Degree], st.Name)
		assert.WithinDuration(t, fakeSunCrossing(float64(st.Degree)), st.AtUTC, time.Second)
		if st.Major() {
			majors++
		}
	}
	assert.Equal(t, 12, majors)
}

func TestMajorTermsBetween(t *testing.T) {
	e := fakeEngine()
	start := fakeEpoch.Add(-time.Hour)
	end := start.Add(time.Duration(fakeTropicalDays * 86400 * float64(time.Second)))

	majors, err := e.majorTermsBetween(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, majors, 12)
	for _, st := range majors {
		assert.Zero(t, st.Degree%30)
	}
}

func TestSekkiEventsBetween_MidnightAttributesToFollowingDay(t *testing.T) {
	// A term exactly at JST midnight belongs to the day that begins there.
	boundary := time.Date(2020, time.June, 15, 0, 0, 0, 0, jstZone)
	e := engine{p: midnightCrossingProvider{at: boundary}}

	events, err := sekkiEventsBetween(context.Background(), e, CivilDate{2020, time.June, 14}, CivilDate{2020, time.June, 16})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "夏至", events[0].Name)
	assert.Equal(t, 90, events[0].Degree)
	assert.Equal(t, "2020-06-15", events[0].DateJST)
	assert.Equal(t, "2020-06-15T00:00:00+09:00", events[0].AtJST)
}

// midnightCrossingProvider pins the sun to cross 90° exactly at the given
// instant, moving at the fake uniform rate; the moon stays far from new.
type midnightCrossingProvider struct {
	at time.Time
}

func (p midnightCrossingProvider) SunLongitude(t time.Time) (float64, error) {
	days := t.Sub(p.at).Seconds() / 86400
	return norm360(90 + days*360/fakeTropicalDays), nil
}

func (p midnightCrossingProvider) MoonLongitude(t time.Time) (float64, error) {
	sun, _ := p.SunLongitude(t)
	return norm360(sun + 180), nil
}

func (midnightCrossingProvider) SunriseSunset(int, time.Month, int, float64, float64) (time.Time, time.Time) {
	return time.Time{}, time.Time{}
}

func (midnightCrossingProvider) Coverage() (time.Time, time.Time) {
	return time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (midnightCrossingProvider) Name() string { return "midnight-fake" }
