package song

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PathSummary renders a path as text: one line per activation with
// 1-indexed measures rounded to the nearest quarter measure, then the
// score line.
func (o *Optimiser) PathSummary(path Path) string {
	var b strings.Builder
	pts := o.song.Points()
	for i, act := range path.Activations {
		start := measureValue(float64(pts.At(act.ActStart).Position.Measure))
		end := measureValue(float64(pts.At(act.ActEnd).Position.Measure))
		fmt.Fprintf(&b, "Activation %d: measure %s → measure %s\n", i+1, start, end)
	}
	// Solo bonuses are already part of the path's boost, so the base
	// counts the notes alone.
	base := pts.RangeScore(0, pts.Len())
	fmt.Fprintf(&b, "Total score: %d + %d = %d", base, path.ScoreBoost, base+path.ScoreBoost)
	return b.String()
}

// measures are shown 1-indexed, rounded to the nearest quarter.
func measureValue(measure float64) string {
	rounded := math.Round((measure+1.0)*4.0) / 4.0
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
