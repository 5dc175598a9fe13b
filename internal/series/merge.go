package series

import (
	"sort"

	"github.com/ggonzalez94/dexstats/internal/network"
)

// MergedPoint is one bucket of a stacked multi-network chart. Values holds an
// entry only for networks that had data at this bucket; the chart layer
// treats an absent network as a zero-height stack segment.
type MergedPoint struct {
	Date   int64
	Time   string
	Values map[network.Network]float64
}

// MergeByNetwork merges same-shaped series from the supported networks into
// one series keyed by bucket timestamp. Inputs must already be bucketed with
// the same bucket size and epoch alignment; merging is by exact timestamp
// equality, no cross-network interpolation.
func MergeByNetwork(byNetwork map[network.Network][]Point) []MergedPoint {
	grouped := make(map[int64]map[network.Network]float64)
	for net, points := range byNetwork {
		for _, p := range points {
			bucket, ok := grouped[p.Date]
			if !ok {
				bucket = make(map[network.Network]float64, len(byNetwork))
				grouped[p.Date] = bucket
			}
			bucket[net] = p.Value
		}
	}

	out := make([]MergedPoint, 0, len(grouped))
	for date, values := range grouped {
		out = append(out, MergedPoint{
			Date:   date,
			Time:   FormatDay(date),
			Values: values,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
