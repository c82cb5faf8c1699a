package finance

import "time"

// MonthsBetween counts whole calendar months from a to b. A partial month (b's
// day of month earlier than a's) does not count. Returns a negative count when b
// precedes a.
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return -MonthsBetween(b, a)
	}
	a, b = a.UTC(), b.UTC()
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}
