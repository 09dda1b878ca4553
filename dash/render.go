package dash

import (
	"math"
	"strings"
)

const blocks = " ▁▂▃▄▅▆▇█"

// sparkline draws the magnitudes of the last width values, left-padded.
// A non-positive ceil scales to the largest magnitude.
func sparkline(data []float64, width int, ceil float64) string {
	if width <= 0 {
		return ""
	}
	if len(data) == 0 {
		return strings.Repeat(" ", width)
	}
	d := data
	if len(d) < width {
		pad := make([]float64, width-len(d))
		d = append(pad, d...)
	} else if len(d) > width {
		d = d[len(d)-width:]
	}
	if ceil <= 0 {
		for _, v := range d {
			ceil = math.Max(ceil, math.Abs(v))
		}
	}
	if ceil <= 0 {
		ceil = 1
	}
	blk := []rune(blocks)
	var b strings.Builder
	for _, v := range d {
		frac := math.Min(1, math.Abs(v)/ceil)
		b.WriteRune(blk[min(8, int(frac*8))])
	}
	return b.String()
}

// gauge places value on a horizontal scale with ticks at each mark.
func gauge(value, vmin, vmax float64, width int, marks ...float64) string {
	if width <= 0 {
		return ""
	}
	rng := vmax - vmin
	if rng == 0 {
		rng = 1
	}
	col := func(v float64) int {
		t := math.Max(0, math.Min(1, (v-vmin)/rng))
		return int(t * float64(width-1))
	}
	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '─'
	}
	if vmin < 0 && vmax > 0 {
		bar[col(0)] = '┼'
	}
	for _, m := range marks {
		bar[col(m)] = '┊'
	}
	bar[col(value)] = '●'
	return string(bar)
}
