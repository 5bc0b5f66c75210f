package insights

import (
	"time"
)

// volumeTrend compares email counts in the two halves of the batch's time
// range. The midpoint belongs to the second half. Fewer than two dates or a
// zero-length range is flat.
func volumeTrend(dates []time.Time) Trend {
	if len(dates) < 2 {
		return TrendFlat
	}

	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}

	span := hi.Sub(lo)
	if span <= 0 {
		return TrendFlat
	}
	mid := lo.Add(span / 2)

	var first, second int
	for _, d := range dates {
		if d.Before(mid) {
			first++
		} else {
			second++
		}
	}

	switch {
	case second > first:
		return TrendUp
	case second < first:
		return TrendDown
	default:
		return TrendFlat
	}
}
