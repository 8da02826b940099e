package toki

import (
	"context"
	"sort"
	"time"
)

// SolarTerm is one 二十四節気 crossing: the instant at which the apparent
// solar ecliptic longitude reaches Degree.
type SolarTerm struct {
	Name   string
	Degree int // 0, 15, ..., 345
	AtUTC  time.Time
}

// Major reports whether the term is a 中気 (principal term): a multiple
// of 30° (0, 30, ..., 330). The odd multiples of 15° are 節 (minor terms).
func (s SolarTerm) Major() bool {
	return s.Degree%30 == 0
}

// sekkiNames maps each 15° longitude to its canonical name. 0° is 春分.
var sekkiNames = map[int]string{
	0:   "春分",
	15:  "清明",
	30:  "穀雨",
	45:  "立夏",
	60:  "小満",
	75:  "芒種",
	90:  "夏至",
	105: "小暑",
	120: "大暑",
	135: "立秋",
	150: "処暑",
	165: "白露",
	180: "秋分",
	195: "寒露",
	210: "霜降",
	225: "立冬",
	240: "小雪",
	255: "大雪",
	270: "冬至",
	285: "小寒",
	300: "大寒",
	315: "立春",
	330: "雨水",
	345: "啓蟄",
}

// solarLongitudeCrossings returns every instant in [t0, t1) at which the
// solar longitude crosses targetDeg in the direction of increase.
func (e engine) solarLongitudeCrossings(ctx context.Context, t0, t1 time.Time, targetDeg float64) ([]time.Time, error) {
	return crossings(ctx, e.sunLongitude, t0, t1, targetDeg)
}

// solarTermsBetween enumerates all 24-term crossings in [t0, t1), merged
// and sorted by instant. At most one crossing of each degree exists in any
// ~366-day window, but the window itself may span several years.
func (e engine) solarTermsBetween(ctx context.Context, t0, t1 time.Time) ([]SolarTerm, error) {
	var out []SolarTerm
	for deg := 0; deg < 360; deg += 15 {
		ts, err := e.solarLongitudeCrossings(ctx, t0, t1, float64(deg))
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			out = append(out, SolarTerm{Name: sekkiNames[deg], Degree: deg, AtUTC: t})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AtUTC.Before(out[j].AtUTC) })
	return out, nil
}

// majorTermsBetween is solarTermsBetween restricted to 中気; these drive
// leap-month placement.
func (e engine) majorTermsBetween(ctx context.Context, t0, t1 time.Time) ([]SolarTerm, error) {
	all, err := e.solarTermsBetween(ctx, t0, t1)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, st := range all {
		if st.Major() {
			out = append(out, st)
		}
	}
	return out, nil
}
