package toki

import "fmt"

// rokuyoLabels indexed by (month + day) mod 6. The 1st of lunar months 1
// and 7 is 先勝, so 旧暦 1/1 is always 先勝.
var rokuyoLabels = [6]string{"大安", "赤口", "先勝", "友引", "先負", "仏滅"}

// rokuyo returns the six-day label for a lunisolar (month, day). The leap
// flag does not participate: a 閏5月 day uses month number 5.
func rokuyo(lunarMonth, lunarDay int) (string, error) {
	if lunarMonth < 1 || lunarMonth > 12 {
		return "", fmt.Errorf("%w: lunar month %d out of range", ErrInvalidInput, lunarMonth)
	}
	if lunarDay < 1 || lunarDay > 30 {
		return "", fmt.Errorf("%w: lunar day %d out of range", ErrInvalidInput, lunarDay)
	}
	return rokuyoLabels[(lunarMonth+lunarDay)%6], nil
}
