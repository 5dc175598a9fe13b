package series

import "math"

// PercentChange returns the percentage move from before to now. A zero or
// missing prior value legitimately happens for brand-new pairs, so a
// non-finite result collapses to 0 instead of leaking NaN/Inf into chart
// payloads.
func PercentChange(now, before float64) float64 {
	pct := (now - before) / before * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

// SecondOrderChange compares the latest period's delta against the previous
// period's delta: the first return is now-oneAgo exactly, the second is the
// percent change of that delta versus oneAgo-twoAgo with the same non-finite
// guard as PercentChange.
func SecondOrderChange(now, oneAgo, twoAgo float64) (float64, float64) {
	currentDelta := now - oneAgo
	previousDelta := oneAgo - twoAgo
	adjusted := currentDelta/previousDelta*100 - 100
	if math.IsNaN(adjusted) || math.IsInf(adjusted, 0) {
		return currentDelta, 0
	}
	return currentDelta, adjusted
}
