package pricing

import "roomly/pkg/model"

// Calculator derives the total price of a stay from the room's nightly
// rate. Pure computation, no I/O.
type Calculator struct{}

// Quote prices the interval at the given nightly rate. A stay always
// bills at least one night: check-in and check-out on the same date is a
// deliberate one-night charge, not a free booking.
func (Calculator) Quote(iv model.StayInterval, nightlyRateCents int64) (nights int, totalCents int64) {
	nights = iv.Nights()
	if nights < 1 {
		nights = 1
	}
	return nights, int64(nights) * nightlyRateCents
}
