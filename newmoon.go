package toki

import (
	"context"
	"time"
)

// Synodic month bounds used to sanity-check a new-moon series.
const (
	minSynodic = 27 * 24 * time.Hour
	maxSynodic = 31 * 24 * time.Hour
)

// newMoonsBetween enumerates the new-moon instants in [t0, t1), sorted
// strictly ascending. A new moon is a forward crossing of lunar phase
// through 0°.
func (e engine) newMoonsBetween(ctx context.Context, t0, t1 time.Time) ([]time.Time, error) {
	moons, err := crossings(ctx, e.moonPhase, t0, t1, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(moons); i++ {
		gap := moons[i].Sub(moons[i-1])
		if gap < minSynodic || gap > maxSynodic {
			return nil, lunisolarErrorf("implausible new-moon gap %v between %s and %s",
				gap, formatJST(moons[i-1]), formatJST(moons[i]))
		}
	}
	return moons, nil
}
