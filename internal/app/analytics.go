package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/ggonzalez94/dexstats/internal/model"
	"github.com/ggonzalez94/dexstats/internal/network"
	"github.com/ggonzalez94/dexstats/internal/series"
	"github.com/ggonzalez94/dexstats/internal/subgraph"
)

// Flow and cumulative metric keys used in reconstructed series records.
const (
	metricVolume    = "volume"
	metricTxns      = "txns"
	metricTVL       = "tvl"
	metricLiquidity = "liquidity"
	metricPrice     = "price"
)

// parseChartFloat converts a subgraph decimal string into a chart float.
// Malformed or non-finite values render as zero rather than poisoning a
// series; exactness only matters in the valuation path, which never goes
// through here.
func parseChartFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func protocolRecords(items []subgraph.ProtocolDayData) []series.Record {
	out := make([]series.Record, 0, len(items))
	for _, item := range items {
		out = append(out, series.Record{
			Date: item.Date,
			Flow: map[string]float64{
				metricVolume: parseChartFloat(item.DailyVolumeUSD),
				metricTxns:   parseChartFloat(item.TxCount),
			},
			Cumulative: map[string]float64{
				metricTVL: parseChartFloat(item.TotalLiquidityUSD),
			},
		})
	}
	return out
}

func pairRecords(items []subgraph.PairDayData) []series.Record {
	out := make([]series.Record, 0, len(items))
	for _, item := range items {
		out = append(out, series.Record{
			Date: item.Date,
			Flow: map[string]float64{
				metricVolume: parseChartFloat(item.DailyVolumeUSD),
				metricTxns:   parseChartFloat(item.DailyTxns),
			},
			Cumulative: map[string]float64{
				metricTVL: parseChartFloat(item.ReserveUSD),
			},
		})
	}
	return out
}

func tokenRecords(items []subgraph.TokenDayData) []series.Record {
	out := make([]series.Record, 0, len(items))
	for _, item := range items {
		out = append(out, series.Record{
			Date: item.Date,
			Flow: map[string]float64{
				metricVolume: parseChartFloat(item.DailyVolumeUSD),
				metricTxns:   parseChartFloat(item.DailyTxns),
			},
			Cumulative: map[string]float64{
				metricLiquidity: parseChartFloat(item.TotalLiquidityUSD),
				metricPrice:     parseChartFloat(item.PriceUSD),
			},
		})
	}
	return out
}

// flowPoints extracts one flow metric from a reconstructed series.
func flowPoints(records []series.Record, key string) []series.Point {
	out := make([]series.Point, 0, len(records))
	for _, rec := range records {
		out = append(out, series.Point{Date: rec.Date, Value: rec.Flow[key]})
	}
	return out
}

// cumulativePoints extracts one cumulative metric from a reconstructed series.
func cumulativePoints(records []series.Record, key string) []series.Point {
	out := make([]series.Point, 0, len(records))
	for _, rec := range records {
		out = append(out, series.Point{Date: rec.Date, Value: rec.Cumulative[key]})
	}
	return out
}

func chartPoints(points []series.Point) []model.ChartPoint {
	out := make([]model.ChartPoint, 0, len(points))
	for _, p := range points {
		out = append(out, model.ChartPoint{Time: series.FormatDay(p.Date), Value: p.Value})
	}
	return out
}

func stackedPoints(merged []series.MergedPoint) []model.StackedChartPoint {
	out := make([]model.StackedChartPoint, 0, len(merged))
	for _, m := range merged {
		values := make(map[string]float64, len(m.Values))
		for n, v := range m.Values {
			values[n.Slug()] = v
		}
		out = append(out, model.StackedChartPoint{Time: m.Time, Values: values})
	}
	return out
}

func networkSlugs(nets []network.Network) []string {
	out := make([]string, 0, len(nets))
	for _, n := range nets {
		out = append(out, n.Slug())
	}
	return out
}

type protocolFetchResult struct {
	network network.Network
	records []series.Record
	status  model.ProviderStatus
	err     error
}

// fetchProtocolSeries pulls protocol day data from every requested network in
// parallel and reconstructs each into a dense daily series. A failing network
// degrades to a warning and a partial result; the fetch fails outright only
// when every network fails.
func (s *runtimeState) fetchProtocolSeries(ctx context.Context, nets []network.Network, start, now int64) (map[network.Network][]series.Record, []model.ProviderStatus, []string, bool, error) {
	results := make([]protocolFetchResult, len(nets))
	var wg sync.WaitGroup
	for i, n := range nets {
		wg.Add(1)
		go func(i int, n network.Network) {
			defer wg.Done()
			results[i].network = n
			graph, err := s.graph(n)
			if err != nil {
				results[i].err = err
				results[i].status = model.ProviderStatus{Name: subgraphStatusName(n), Status: statusFromErr(err)}
				return
			}
			began := time.Now()
			items, err := graph.ProtocolDayDatas(ctx, start)
			results[i].status = model.ProviderStatus{Name: subgraphStatusName(n), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()}
			if err != nil {
				results[i].err = err
				return
			}
			results[i].records = series.Reconstruct(protocolRecords(items), series.DayBucket, start, now)
		}(i, n)
	}
	wg.Wait()

	byNetwork := make(map[network.Network][]series.Record, len(nets))
	statuses := make([]model.ProviderStatus, 0, len(nets))
	var warnings []string
	var firstErr error
	failed := 0
	for _, res := range results {
		statuses = append(statuses, res.status)
		if res.err != nil {
			failed++
			warnings = append(warnings, fmt.Sprintf("network %s failed: %v", res.network.Slug(), res.err))
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		byNetwork[res.network] = res.records
	}
	if failed == len(nets) {
		return nil, statuses, warnings, false, firstErr
	}
	return byNetwork, statuses, warnings, failed > 0, nil
}

func subgraphStatusName(n network.Network) string {
	return "subgraph:" + n.Slug()
}

func blocksStatusName(n network.Network) string {
	return "blocks:" + n.Slug()
}

func rpcStatusName(n network.Network) string {
	return "rpc:" + n.Slug()
}
