package soil

import (
	"math"
	"strconv"
)

// NPKRatio renders nitrogen:phosphorus:potassium normalized to the smallest
// non-zero value, each part rounded to one decimal, e.g. (40,20,60) -> "2:1:3".
// It returns nil unless all three are present, finite and non-negative.
func NPKRatio(n, p, k *float64) *string {
	if n == nil || p == nil || k == nil {
		return nil
	}
	vals := [3]float64{*n, *p, *k}
	smallest := math.Inf(1)
	for _, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		if v > 0 && v < smallest {
			smallest = v
		}
	}

	var parts [3]string
	for i, v := range vals {
		r := 0.0
		if !math.IsInf(smallest, 1) {
			r = math.Round(v/smallest*10) / 10
		}
		parts[i] = strconv.FormatFloat(r, 'f', -1, 64)
	}
	s := parts[0] + ":" + parts[1] + ":" + parts[2]
	return &s
}
