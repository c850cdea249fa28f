package units

import "fmt"

// FormatPace renders a pace in seconds-per-km as "m:ss". Paces of zero
// or less have no meaning (zero-distance activities) and render empty.
func FormatPace(secPerKm float64) string {
	if secPerKm <= 0 {
		return ""
	}
	total := int(secPerKm)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatDuration renders elapsed seconds as "h:mm:ss", dropping the
// hour segment when zero.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
