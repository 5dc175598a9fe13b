package series

import (
	"sort"
	"time"
)

// WeeklyAggregate groups a daily series into ISO weeks (Monday start),
// summing the flow values inside each week. Each output point is labeled
// with the week's Monday. The input does not need to be sorted.
func WeeklyAggregate(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}

	type weekKey struct {
		year int
		week int
	}
	sums := make(map[weekKey]float64)
	starts := make(map[weekKey]int64)
	for _, p := range points {
		t := time.Unix(p.Date, 0).UTC()
		year, week := t.ISOWeek()
		key := weekKey{year: year, week: week}
		sums[key] += p.Value
		monday := weekStart(t)
		if cur, ok := starts[key]; !ok || monday < cur {
			starts[key] = monday
		}
	}

	out := make([]Point, 0, len(sums))
	for key, sum := range sums {
		out = append(out, Point{Date: starts[key], Value: sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// weekStart returns midnight UTC of the Monday beginning t's ISO week.
func weekStart(t time.Time) int64 {
	day := t.UTC()
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	monday := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)
	return monday.Unix()
}
