package activity

import (
	"sort"

	"backend-runlog/internal/shared/localtime"
)

// Years lists the distinct calendar years (display timezone) that have
// at least one activity, most recent first.
func Years(activities []Activity, norm localtime.Normalizer) []int {
	seen := map[int]struct{}{}
	for _, a := range activities {
		seen[norm.Year(a.StartTime)] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Months lists the distinct months (1-12) with activity in the given
// year, descending. Year 0 means all years.
func Months(activities []Activity, year int, norm localtime.Normalizer) []int {
	seen := map[int]struct{}{}
	for _, a := range activities {
		if year != 0 && norm.Year(a.StartTime) != year {
			continue
		}
		seen[norm.Month(a.StartTime)] = struct{}{}
	}
	months := make([]int, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(months)))
	return months
}
