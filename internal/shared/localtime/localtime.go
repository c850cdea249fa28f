package localtime

import "time"

// Normalizer shifts stored activity timestamps into the runner's
// display timezone. Timestamps are persisted without zone info and
// scanned as UTC instants, so display is a fixed-offset shift (the
// original product showed everything in KST, UTC+9).
type Normalizer struct {
	loc *time.Location
}

func New(zone string) Normalizer {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return Normalizer{loc: loc}
}

func (n Normalizer) Location() *time.Location {
	return n.loc
}

func (n Normalizer) ToLocal(t time.Time) time.Time {
	return t.In(n.loc)
}

// DayKey buckets t by calendar day in the display zone.
func (n Normalizer) DayKey(t time.Time) string {
	return t.In(n.loc).Format("2006-01-02")
}

func (n Normalizer) Year(t time.Time) int {
	return t.In(n.loc).Year()
}

func (n Normalizer) Month(t time.Time) int {
	return int(t.In(n.loc).Month())
}
