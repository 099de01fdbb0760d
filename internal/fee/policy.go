// Package fee holds the pure tariff functions. Everything here is
// deterministic given its inputs; billing correctness hinges on the hour
// rounding and the tier formula, so the logic lives in one place with no
// storage access.
package fee

import "time"

// BillableHours is the ceiling of the stay duration in hours, clamped to a
// minimum of one. A stay of up to one hour bills as exactly one hour.
func BillableHours(checkedIn, checkedOut time.Time) int64 {
	d := checkedOut.Sub(checkedIn)
	if d <= time.Hour {
		return 1
	}
	hours := int64(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours
}

// Amount prices a stay in integral VND.
//
// Monthly subscribers pay no tariff regardless of duration. Everyone else
// pays the full service fee for the first hour and half the service fee for
// each additional hour. The lost-ticket surcharge, when configured, applies
// on top of either case.
func Amount(hours, serviceFee int64, isMonthly, isLost bool, penaltyFee int64) int64 {
	var amount int64
	if !isMonthly {
		amount = serviceFee
		if hours > 1 {
			amount += (hours - 1) * serviceFee / 2
		}
	}
	if isLost && penaltyFee > 0 {
		amount += penaltyFee
	}
	if amount < 0 {
		return 0
	}
	return amount
}
