package catalog

import (
	"math"
	"time"
)

// EffectivePrice applies offer to price when the offer is in effect at now.
// The result never drops below zero and is rounded to two decimals.
func EffectivePrice(price float64, offer *Offer, now time.Time) float64 {
	if !offer.InEffect(now) {
		return round2(price)
	}

	discounted := price
	switch offer.DiscountType {
	case DiscountPercentage:
		discounted = price - price*offer.DiscountValue/100
	case DiscountFlat:
		discounted = price - offer.DiscountValue
	}
	if discounted < 0 {
		discounted = 0
	}
	return round2(discounted)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
