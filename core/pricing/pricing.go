package pricing

import (
	"time"

	"movura-admin/core/store"
)

// Fee computes the amount due for a stay under the facility tariff.
// Courtesy minutes from affiliated merchants are subtracted before any
// billing. Stays within the grace window are free. The first hour is
// covered by the base rate; every further started hour is billed in
// fractions, capped at the hourly rate for that hour.
func Fee(t store.TariffConfig, enteredAt, exitedAt time.Time, courtesyMinutes int) int64 {
	if !exitedAt.After(enteredAt) {
		return 0
	}
	minutes := int(exitedAt.Sub(enteredAt).Minutes())
	if exitedAt.Sub(enteredAt)%time.Minute > 0 {
		minutes++
	}
	minutes -= courtesyMinutes
	if minutes <= t.GraceMinutes {
		return 0
	}

	total := t.BaseRateCents
	remaining := minutes - 60
	for remaining > 0 {
		inHour := remaining
		if inHour > 60 {
			inHour = 60
		}
		total += hourCharge(t, inHour)
		remaining -= 60
	}
	return total
}

func hourCharge(t store.TariffConfig, minutes int) int64 {
	fracMin := t.FractionMinutes
	if fracMin <= 0 {
		fracMin = 15
	}
	fractions := minutes / fracMin
	if minutes%fracMin > 0 {
		fractions++
	}
	charge := int64(fractions) * t.FractionCents
	if t.HourlyCents > 0 && charge > t.HourlyCents {
		charge = t.HourlyCents
	}
	return charge
}
