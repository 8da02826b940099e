package toki

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	// scanStep is the coarse scan resolution. The fastest target quantity
	// (lunar phase, ~12.19°/day) moves ~1.5° per step, so no crossing can
	// hide between adjacent samples.
	scanStep = 3 * time.Hour

	// bisectTimeTol and bisectDegTol bound the refinement: the bracket is
	// narrowed until it is under one second wide and the residual is under
	// 1e-4 degrees, whichever bound is the tighter one for the quantity.
	bisectTimeTol = time.Second
	bisectDegTol  = 1e-4

	bisectMaxIter = 60

	// dedupWindow merges crossings reported twice near bracket boundaries.
	dedupWindow = time.Minute
)

// angleFunc is a cyclic scalar quantity of time in degrees, e.g. solar
// ecliptic longitude or lunar phase.
type angleFunc func(t time.Time) (float64, error)

// crossings returns every instant in [a, b) at which g crosses target
// (mod 360°) in the direction of increase, sorted ascending.
//
// The scan works on the signed residual u(t) = (g(t) - target) wrapped to
// (-180, 180]: a forward crossing is a sign change of u from negative to
// non-negative that does not span the ±180 discontinuity. Raw angles are
// never subtracted, so 359.9° → 0.1° is a small forward step, not a jump.
func crossings(ctx context.Context, g angleFunc, a, b time.Time, target float64) ([]time.Time, error) {
	if !a.Before(b) {
		return nil, nil
	}
	target = norm360(target)

	residual := func(t time.Time) (float64, error) {
		v, err := g(t)
		if err != nil {
			return 0, err
		}
		return angDiff180(v - target), nil
	}

	var out []time.Time

	tPrev := a
	uPrev, err := residual(tPrev)
	if err != nil {
		return nil, err
	}

	for t := a; t.Before(b); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t = t.Add(scanStep)
		if t.After(b) {
			t = b
		}
		u, err := residual(t)
		if err != nil {
			return nil, err
		}

		switch {
		case uPrev == 0 && u > 0:
			// Forward crossing exactly on the previous sample. The segment
			// before it reported the same instant unless it opened the
			// scan; the dedup below collapses the pair.
			out = append(out, tPrev)
		case u == 0 && uPrev < 0:
			// Forward crossing exactly on a sample: keep the precise
			// instant rather than a bisected approximation, so attribution
			// at day boundaries stays exact.
			out = append(out, t)
		case uPrev < 0 && u > 0 && u-uPrev < 180:
			r, err := bisect(residual, tPrev, t)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}

		tPrev, uPrev = t, u
		if t.Equal(b) {
			break
		}
	}

	// Half-open endpoint policy plus the 1-minute dedup.
	var merged []time.Time
	for _, r := range out {
		if r.Before(a) || !r.Before(b) {
			continue
		}
		if n := len(merged); n > 0 && r.Sub(merged[n-1]) < dedupWindow {
			continue
		}
		merged = append(merged, r)
	}
	return merged, nil
}

// bisect refines a bracket [lo, hi] with u(lo) < 0 <= u(hi) down to the
// tolerance, keeping the sign change inside the bracket at every step.
func bisect(residual angleFunc, lo, hi time.Time) (time.Time, error) {
	a, b := lo, hi
	var mid time.Time
	var uMid float64
	for i := 0; i < bisectMaxIter; i++ {
		mid = a.Add(b.Sub(a) / 2)
		var err error
		uMid, err = residual(mid)
		if err != nil {
			return time.Time{}, err
		}
		if uMid >= 0 {
			b = mid
		} else {
			a = mid
		}
		if b.Sub(a) <= bisectTimeTol && math.Abs(uMid) <= bisectDegTol {
			return mid, nil
		}
	}
	// Converged in time but not in angle is still a usable root as long as
	// the residual is sane; a large residual means the bracket was bogus.
	if b.Sub(a) <= bisectTimeTol && math.Abs(uMid) <= 0.01 {
		return mid, nil
	}
	return time.Time{}, fmt.Errorf("%w: no convergence in %d iterations between %s and %s (residual %.6f°)",
		ErrRootFindFailed, bisectMaxIter, lo.UTC().Format(time.RFC3339), hi.UTC().Format(time.RFC3339), uMid)
}
