package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ggonzalez94/dexstats/internal/blocks"
	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/model"
	"github.com/ggonzalez94/dexstats/internal/onchain"
	"github.com/ggonzalez94/dexstats/internal/series"
	"github.com/ggonzalez94/dexstats/internal/subgraph"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newPairsCommand() *cobra.Command {
	root := &cobra.Command{Use: "pairs", Short: "Pair analytics on the selected network"}

	var chartPair, chartMetric, chartBucket string
	var chartDays int
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart series for one pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			pairAddress, err := normalizeAddressArg(chartPair, "--pair")
			if err != nil {
				return err
			}
			metricName, err := normalizeChartMetric(chartMetric)
			if err != nil {
				return err
			}
			bucketName, err := normalizeChartBucket(chartBucket)
			if err != nil {
				return err
			}
			if bucketName == "week" && metricName != metricVolume {
				return clierr.New(clierr.CodeUsage, "--bucket week applies to flow metrics only (volume)")
			}
			days := chartDays
			if days <= 0 {
				days = defaultChartDays
			}

			req := map[string]any{"network": s.selected.Slug(), "pair": pairAddress, "metric": metricName, "bucket": bucketName, "days": days}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, 5*time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				graph, err := s.graph(s.selected)
				if err != nil {
					return nil, nil, nil, false, err
				}
				now := s.runner.now().UTC().Unix()
				start := now - int64(days)*int64(series.DayBucket)

				began := time.Now()
				items, err := graph.PairDayDatas(ctx, pairAddress, start)
				statuses := []model.ProviderStatus{{Name: subgraphStatusName(s.selected), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()}}
				if err != nil {
					return nil, statuses, nil, false, err
				}

				records := series.Reconstruct(pairRecords(items), series.DayBucket, start, now)
				var points []series.Point
				if metricName == metricTVL {
					points = cumulativePoints(records, metricTVL)
				} else {
					points = flowPoints(records, metricVolume)
				}
				if bucketName == "week" {
					points = series.WeeklyAggregate(points)
				}

				chart := model.Chart{
					Metric:    metricName,
					Bucket:    bucketName,
					Networks:  []string{s.selected.Slug()},
					Points:    chartPoints(points),
					FetchedAt: s.runner.now().UTC().Format(time.RFC3339),
				}
				return chart, statuses, nil, false, nil
			})
		},
	}
	chartCmd.Flags().StringVar(&chartPair, "pair", "", "Pair contract address")
	chartCmd.Flags().StringVar(&chartMetric, "metric", "volume", "Metric (volume|tvl)")
	chartCmd.Flags().StringVar(&chartBucket, "bucket", "day", "Bucket (day|week)")
	chartCmd.Flags().IntVar(&chartDays, "days", defaultChartDays, "Days of history")
	_ = chartCmd.MarkFlagRequired("pair")
	root.AddCommand(chartCmd)

	var statsPair string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Stat block for one pair with 24h/48h change metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			pairAddress, err := normalizeAddressArg(statsPair, "--pair")
			if err != nil {
				return err
			}
			req := map[string]any{"network": s.selected.Slug(), "pair": pairAddress}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				return s.fetchPairStats(ctx, pairAddress)
			})
		},
	}
	statsCmd.Flags().StringVar(&statsPair, "pair", "", "Pair contract address")
	_ = statsCmd.MarkFlagRequired("pair")
	root.AddCommand(statsCmd)

	return root
}

func (s *runtimeState) fetchPairStats(ctx context.Context, pairAddress string) (any, []model.ProviderStatus, []string, bool, error) {
	graph, err := s.graph(s.selected)
	if err != nil {
		return nil, nil, nil, false, err
	}
	resolver, err := s.blockResolver(s.selected)
	if err != nil {
		return nil, nil, nil, false, err
	}

	var statuses []model.ProviderStatus
	var warnings []string
	partial := false

	began := time.Now()
	pair, err := graph.PairByAddress(ctx, pairAddress)
	statuses = append(statuses, model.ProviderStatus{Name: subgraphStatusName(s.selected), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()})
	if err != nil {
		return nil, statuses, warnings, false, err
	}
	if pair == nil {
		return nil, statuses, warnings, false, clierr.New(clierr.CodeUsage, "pair not found on "+s.selected.Slug())
	}

	now := s.runner.now().UTC().Unix()
	pair24, pair48, blockStatuses, blockWarnings := s.pairSnapshots(ctx, graph, resolver, pairAddress, now)
	statuses = append(statuses, blockStatuses...)
	warnings = append(warnings, blockWarnings...)
	if len(blockWarnings) > 0 {
		partial = true
	}

	volNow := parseChartFloat(pair.VolumeUSD)
	reserveNow := parseChartFloat(pair.ReserveUSD)
	var volume24, volume48, reserveChange float64
	if pair24 != nil {
		vol24Ago := parseChartFloat(pair24.VolumeUSD)
		volume24 = volNow - vol24Ago
		reserveChange = series.PercentChange(reserveNow, parseChartFloat(pair24.ReserveUSD))
		if pair48 != nil {
			volume48 = vol24Ago - parseChartFloat(pair48.VolumeUSD)
		}
	}

	feeBips, feeStatus, feeWarnings := s.pairSwapFee(ctx, pairAddress)
	statuses = append(statuses, feeStatus)
	warnings = append(warnings, feeWarnings...)
	if len(feeWarnings) > 0 {
		partial = true
	}

	stats := model.PairStats{
		Network:          s.selected.Slug(),
		PairAddress:      pairAddress,
		Token0Symbol:     pair.Token0.Symbol,
		Token1Symbol:     pair.Token1.Symbol,
		ReserveUSD:       reserveNow,
		ReserveChangePct: reserveChange,
		Volume24hUSD:     volume24,
		Volume48hUSD:     volume48,
		VolumeChangePct:  series.PercentChange(volume24, volume48),
		Fees24hUSD:       volume24 * float64(feeBips) / 10000,
		SwapFeeBips:      feeBips,
		Token0Price:      formatPrice(parseChartFloat(pair.Reserve1), parseChartFloat(pair.Reserve0)),
		Token1Price:      formatPrice(parseChartFloat(pair.Reserve0), parseChartFloat(pair.Reserve1)),
		FetchedAt:        s.runner.now().UTC().Format(time.RFC3339),
	}
	return stats, statuses, warnings, partial, nil
}

// pairSnapshots resolves the blocks nearest 24h and 48h ago and pins the pair
// state at each. Missing blocks or snapshots degrade to nil with a warning;
// the change metrics then report zero instead of failing the whole command.
func (s *runtimeState) pairSnapshots(ctx context.Context, graph *subgraph.Client, resolver *blocks.Resolver, pairAddress string, now int64) (*subgraph.Pair, *subgraph.Pair, []model.ProviderStatus, []string) {
	var statuses []model.ProviderStatus
	var warnings []string

	snapshotAt := func(label string, ts int64) *subgraph.Pair {
		began := time.Now()
		block, ok := resolver.BlockAt(ctx, ts)
		statuses = append(statuses, model.ProviderStatus{Name: blocksStatusName(s.selected), Status: "ok", LatencyMS: time.Since(began).Milliseconds()})
		if !ok {
			warnings = append(warnings, "no block resolved "+label+" ago; change metrics omitted")
			return nil
		}
		snapshot, err := graph.PairAtBlock(ctx, pairAddress, block.Number)
		if err != nil || snapshot == nil {
			warnings = append(warnings, "pair snapshot "+label+" ago unavailable; change metrics omitted")
			return nil
		}
		return snapshot
	}

	pair24 := snapshotAt("24h", now-int64(series.DayBucket))
	var pair48 *subgraph.Pair
	if pair24 != nil {
		pair48 = snapshotAt("48h", now-2*int64(series.DayBucket))
	}
	return pair24, pair48, statuses, warnings
}

func formatPrice(numerator, denominator float64) string {
	if denominator == 0 {
		return "0"
	}
	return strconv.FormatFloat(numerator/denominator, 'f', 6, 64)
}

// normalizeAddressArg lowercases and validates a 0x-prefixed address flag.
func normalizeAddressArg(input, flagName string) (string, error) {
	norm := strings.ToLower(strings.TrimSpace(input))
	if norm == "" {
		return "", clierr.New(clierr.CodeUsage, flagName+" is required")
	}
	if !strings.HasPrefix(norm, "0x") || len(norm) != 42 {
		return "", clierr.New(clierr.CodeUsage, flagName+" must be a 0x-prefixed address")
	}
	for _, c := range norm[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", clierr.New(clierr.CodeUsage, flagName+" must be a 0x-prefixed address")
		}
	}
	return norm, nil
}

// pairSwapFee reads the pair's swap fee over RPC, falling back to the
// protocol default when the endpoint is unreachable.
func (s *runtimeState) pairSwapFee(ctx context.Context, pairAddress string) (uint32, model.ProviderStatus, []string) {
	began := time.Now()
	status := func(err error) model.ProviderStatus {
		return model.ProviderStatus{Name: rpcStatusName(s.selected), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()}
	}

	reader, err := onchain.Dial(ctx, s.rpcURLs[s.selected])
	if err != nil {
		return onchain.DefaultSwapFeeBips, status(err), []string{"swap fee lookup unavailable, using protocol default: " + err.Error()}
	}
	defer reader.Close()
	fees, err := reader.SwapFees(ctx, []string{pairAddress})
	if err != nil {
		return onchain.DefaultSwapFeeBips, status(err), []string{"swap fee lookup failed, using protocol default: " + err.Error()}
	}
	fee, ok := fees[pairAddress]
	if !ok {
		return onchain.DefaultSwapFeeBips, status(nil), nil
	}
	return fee, status(nil), nil
}
