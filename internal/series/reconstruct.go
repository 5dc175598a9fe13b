// Package series holds the pure time-series transforms behind the chart
// commands: calendar gap-filling, percent-change metrics, weekly aggregation,
// and the multi-network merge. Nothing in this package performs I/O; callers
// fetch subgraph records first and pass immutable snapshots in.
package series

import (
	"sort"
	"time"
)

// Bucket is a fixed-width time interval in seconds.
type Bucket int64

const (
	HourBucket Bucket = 3600
	DayBucket  Bucket = 86400
)

// Record is one dated observation. Flow values are per-bucket quantities
// (daily volume, transaction count) and are zeroed in synthesized buckets;
// cumulative values (reserves, total liquidity, supply) carry forward.
type Record struct {
	Date       int64
	Flow       map[string]float64
	Cumulative map[string]float64
}

// Reconstruct turns a sparse dated record list into a dense series with one
// entry per bucket from the first observation (or start, when non-zero and
// earlier data should be padded from there) through now. On-chain activity is
// sparse: a pair can trade on day 10 and day 12 with nothing between, and the
// liquidity chart still needs a day-11 point holding the day-10 reserves
// while the volume chart needs a true zero.
//
// Empty input yields an empty series. Records sharing a bucket collapse to
// the last one in input order. The result is sorted ascending by date and
// every date is bucket-aligned.
func Reconstruct(records []Record, bucket Bucket, start, now int64) []Record {
	if len(records) == 0 || bucket <= 0 {
		return nil
	}

	size := int64(bucket)
	byIndex := make(map[int64]Record, len(records))
	firstIndex := int64(0)
	seeded := false
	for _, rec := range records {
		idx := rec.Date / size
		byIndex[idx] = rec
		if !seeded || idx < firstIndex {
			firstIndex = idx
			seeded = true
		}
	}
	if start > 0 && start/size < firstIndex {
		firstIndex = start / size
	}
	lastIndex := now / size
	if lastIndex < firstIndex {
		lastIndex = firstIndex
	}

	carried := map[string]float64{}
	out := make([]Record, 0, lastIndex-firstIndex+1)
	for idx := firstIndex; idx <= lastIndex; idx++ {
		if rec, ok := byIndex[idx]; ok {
			for k, v := range rec.Cumulative {
				carried[k] = v
			}
			out = append(out, Record{
				Date:       idx * size,
				Flow:       copyValues(rec.Flow),
				Cumulative: copyValues(rec.Cumulative),
			})
			continue
		}
		synth := Record{
			Date:       idx * size,
			Flow:       map[string]float64{},
			Cumulative: copyValues(carried),
		}
		out = append(out, synth)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func copyValues(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// Point is one chart observation keyed by a bucket-aligned unix timestamp.
type Point struct {
	Date  int64
	Value float64
}

// FormatDay renders a unix timestamp as the YYYY-MM-DD label used by the
// chart layer.
func FormatDay(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}
