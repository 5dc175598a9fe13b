package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/model"
	"github.com/ggonzalez94/dexstats/internal/network"
	"github.com/ggonzalez94/dexstats/internal/series"
	"github.com/spf13/cobra"
)

const defaultChartDays = 90

func (s *runtimeState) newOverviewCommand() *cobra.Command {
	root := &cobra.Command{Use: "overview", Short: "Protocol-wide analytics across all networks"}

	var metric string
	var bucket string
	var days int
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Per-network chart series for a protocol metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			metricName, err := normalizeChartMetric(metric)
			if err != nil {
				return err
			}
			bucketName, err := normalizeChartBucket(bucket)
			if err != nil {
				return err
			}
			if bucketName == "week" && metricName != metricVolume {
				return clierr.New(clierr.CodeUsage, "--bucket week applies to flow metrics only (volume)")
			}
			if days <= 0 {
				days = defaultChartDays
			}

			nets := network.All()
			req := map[string]any{"metric": metricName, "bucket": bucketName, "days": days}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, 5*time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				now := s.runner.now().UTC().Unix()
				start := now - int64(days)*int64(series.DayBucket)
				byNetwork, statuses, warnings, partial, err := s.fetchProtocolSeries(ctx, nets, start, now)
				if err != nil {
					return nil, statuses, warnings, partial, err
				}

				pointsByNetwork := make(map[network.Network][]series.Point, len(byNetwork))
				for n, records := range byNetwork {
					var points []series.Point
					if metricName == metricTVL {
						points = cumulativePoints(records, metricTVL)
					} else {
						points = flowPoints(records, metricVolume)
					}
					if bucketName == "week" {
						points = series.WeeklyAggregate(points)
					}
					pointsByNetwork[n] = points
				}

				chart := model.StackedChart{
					Metric:    metricName,
					Bucket:    bucketName,
					Networks:  networkSlugs(nets),
					Points:    stackedPoints(series.MergeByNetwork(pointsByNetwork)),
					FetchedAt: s.runner.now().UTC().Format(time.RFC3339),
				}
				return chart, statuses, warnings, partial, nil
			})
		},
	}
	chartCmd.Flags().StringVar(&metric, "metric", "volume", "Metric (volume|tvl)")
	chartCmd.Flags().StringVar(&bucket, "bucket", "day", "Bucket (day|week)")
	chartCmd.Flags().IntVar(&days, "days", defaultChartDays, "Days of history")
	root.AddCommand(chartCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Headline protocol stats aggregated across networks",
		RunE: func(cmd *cobra.Command, args []string) error {
			nets := network.All()
			key := cacheKey(trimRootPath(cmd.CommandPath()), map[string]any{})
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, 5*time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				now := s.runner.now().UTC().Unix()
				// Four buckets cover today plus the three prior days the
				// change metrics need.
				start := now - 4*int64(series.DayBucket)
				byNetwork, statuses, warnings, partial, err := s.fetchProtocolSeries(ctx, nets, start, now)
				if err != nil {
					return nil, statuses, warnings, partial, err
				}

				var tvlNow, tvlPrev float64
				var vol [3]float64 // vol[0]=latest bucket, vol[1], vol[2] earlier
				var txns float64
				for _, records := range byNetwork {
					count := len(records)
					if count == 0 {
						continue
					}
					tvlNow += records[count-1].Cumulative[metricTVL]
					txns += records[count-1].Flow[metricTxns]
					if count >= 2 {
						tvlPrev += records[count-2].Cumulative[metricTVL]
					}
					for i := 0; i < 3 && i < count; i++ {
						vol[i] += records[count-1-i].Flow[metricVolume]
					}
				}

				delta, deltaChange := series.SecondOrderChange(vol[0], vol[1], vol[2])
				stats := model.ProtocolStats{
					Networks:             networkSlugs(nets),
					TVLUSD:               tvlNow,
					TVLChangePct:         series.PercentChange(tvlNow, tvlPrev),
					Volume24hUSD:         vol[0],
					Volume48hUSD:         vol[1],
					VolumeChangePct:      series.PercentChange(vol[0], vol[1]),
					VolumeDeltaUSD:       delta,
					VolumeDeltaChangePct: deltaChange,
					TxCount24h:           int64(txns),
					FetchedAt:            s.runner.now().UTC().Format(time.RFC3339),
				}
				return stats, statuses, warnings, partial, nil
			})
		},
	}
	root.AddCommand(statsCmd)

	return root
}

func normalizeChartMetric(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", metricVolume:
		return metricVolume, nil
	case metricTVL, "liquidity":
		return metricTVL, nil
	default:
		return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported metric: %s", input))
	}
}

func normalizeChartBucket(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "day", "daily":
		return "day", nil
	case "week", "weekly":
		return "week", nil
	default:
		return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported bucket: %s", input))
	}
}
