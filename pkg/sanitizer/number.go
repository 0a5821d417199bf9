package sanitizer

import "math"

// RoundPrice rounds to cents. Negative and non-finite values become 0.
func RoundPrice(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return math.Round(price*100) / 100
}
