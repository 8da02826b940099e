package ephem

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// riseSet computes the UTC sunrise and sunset for the given civil day at
// the observer position. Zero times mean the sun does not rise or set that
// day (polar day or night); that is a value, not an error. Both providers
// share this pass-through: observer geometry does not depend on ephemeris
// precision.
func riseSet(year int, month time.Month, day int, lat, lon float64) (rise, set time.Time) {
	return sunrise.SunriseSunset(lat, lon, year, month, day)
}
