package app

import (
	"context"
	"fmt"
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

func (s *runtimeState) newTokensCommand() *cobra.Command {
	root := &cobra.Command{Use: "tokens", Short: "Token analytics on the selected network"}

	var chartToken, chartMetric, chartBucket string
	var chartDays int
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart series for one token",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenAddress, err := normalizeAddressArg(chartToken, "--token")
			if err != nil {
				return err
			}
			metricName, err := normalizeTokenMetric(chartMetric)
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

			req := map[string]any{"network": s.selected.Slug(), "token": tokenAddress, "metric": metricName, "bucket": bucketName, "days": days}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, 5*time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				graph, err := s.graph(s.selected)
				if err != nil {
					return nil, nil, nil, false, err
				}
				now := s.runner.now().UTC().Unix()
				start := now - int64(days)*int64(series.DayBucket)

				began := time.Now()
				items, err := graph.TokenDayDatas(ctx, tokenAddress, start)
				statuses := []model.ProviderStatus{{Name: subgraphStatusName(s.selected), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()}}
				if err != nil {
					return nil, statuses, nil, false, err
				}

				records := series.Reconstruct(tokenRecords(items), series.DayBucket, start, now)
				var points []series.Point
				switch metricName {
				case metricLiquidity:
					points = cumulativePoints(records, metricLiquidity)
				case metricPrice:
					points = cumulativePoints(records, metricPrice)
				default:
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
	chartCmd.Flags().StringVar(&chartToken, "token", "", "Token contract address")
	chartCmd.Flags().StringVar(&chartMetric, "metric", "volume", "Metric (volume|liquidity|price)")
	chartCmd.Flags().StringVar(&chartBucket, "bucket", "day", "Bucket (day|week)")
	chartCmd.Flags().IntVar(&chartDays, "days", defaultChartDays, "Days of history")
	_ = chartCmd.MarkFlagRequired("token")
	root.AddCommand(chartCmd)

	var statsToken string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Stat block for one token with 24h/48h change metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenAddress, err := normalizeAddressArg(statsToken, "--token")
			if err != nil {
				return err
			}
			req := map[string]any{"network": s.selected.Slug(), "token": tokenAddress}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				return s.fetchTokenStats(ctx, tokenAddress)
			})
		},
	}
	statsCmd.Flags().StringVar(&statsToken, "token", "", "Token contract address")
	_ = statsCmd.MarkFlagRequired("token")
	root.AddCommand(statsCmd)

	return root
}

func (s *runtimeState) fetchTokenStats(ctx context.Context, tokenAddress string) (any, []model.ProviderStatus, []string, bool, error) {
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
	token, err := graph.TokenByAddress(ctx, tokenAddress)
	statuses = append(statuses, model.ProviderStatus{Name: subgraphStatusName(s.selected), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()})
	if err != nil {
		return nil, statuses, warnings, false, err
	}
	if token == nil {
		return nil, statuses, warnings, false, clierr.New(clierr.CodeUsage, "token not found on "+s.selected.Slug())
	}

	// Tokens created before the subgraph indexed metadata can carry an empty
	// symbol; the contract itself is the fallback source.
	if strings.TrimSpace(token.Symbol) == "" {
		began = time.Now()
		symbol, symErr := s.tokenSymbolFallback(ctx, tokenAddress)
		statuses = append(statuses, model.ProviderStatus{Name: rpcStatusName(s.selected), Status: statusFromErr(symErr), LatencyMS: time.Since(began).Milliseconds()})
		if symErr != nil {
			warnings = append(warnings, "token symbol unavailable from subgraph and rpc")
			partial = true
		} else {
			token.Symbol = symbol
		}
	}

	nativePrice, err := graph.NativeCurrencyUSDPrice(ctx)
	if err != nil {
		return nil, statuses, warnings, false, err
	}
	priceNow := parseChartFloat(token.DerivedNativeCurrency) * parseChartFloat(nativePrice)
	liquidityNow := parseChartFloat(token.TotalLiquidity) * priceNow

	now := s.runner.now().UTC().Unix()
	snap24, snap48, blockStatuses, blockWarnings := s.tokenSnapshots(ctx, graph, resolver, tokenAddress, now)
	statuses = append(statuses, blockStatuses...)
	warnings = append(warnings, blockWarnings...)
	if len(blockWarnings) > 0 {
		partial = true
	}

	volNow := parseChartFloat(token.TradeVolumeUSD)
	var volume24, volume48, priceChange, liquidityChange float64
	if snap24 != nil {
		vol24Ago := parseChartFloat(snap24.token.TradeVolumeUSD)
		volume24 = volNow - vol24Ago
		price24 := parseChartFloat(snap24.token.DerivedNativeCurrency) * snap24.nativePrice
		priceChange = series.PercentChange(priceNow, price24)
		liquidityChange = series.PercentChange(liquidityNow, parseChartFloat(snap24.token.TotalLiquidity)*price24)
		if snap48 != nil {
			volume48 = vol24Ago - parseChartFloat(snap48.token.TradeVolumeUSD)
		}
	}

	stats := model.TokenStats{
		Network:         s.selected.Slug(),
		TokenAddress:    tokenAddress,
		Symbol:          token.Symbol,
		Name:            token.Name,
		PriceUSD:        strconv.FormatFloat(priceNow, 'f', 6, 64),
		PriceChangePct:  priceChange,
		Volume24hUSD:    volume24,
		Volume48hUSD:    volume48,
		VolumeChangePct: series.PercentChange(volume24, volume48),
		LiquidityUSD:    liquidityNow,
		LiquidityChange: liquidityChange,
		FetchedAt:       s.runner.now().UTC().Format(time.RFC3339),
	}
	return stats, statuses, warnings, partial, nil
}

func (s *runtimeState) tokenSymbolFallback(ctx context.Context, tokenAddress string) (string, error) {
	reader, err := onchain.Dial(ctx, s.rpcURLs[s.selected])
	if err != nil {
		return "", err
	}
	defer reader.Close()
	meta, err := reader.TokenMetadata(ctx, tokenAddress)
	if err != nil {
		return "", err
	}
	return meta.Symbol, nil
}

type tokenSnapshot struct {
	token       *subgraph.Token
	nativePrice float64
}

// tokenSnapshots pins the token and the native-currency price at the blocks
// nearest 24h and 48h ago. Both must resolve at the same block or the
// snapshot is dropped with a warning: a price from one block against
// liquidity from another is not a comparison worth reporting.
func (s *runtimeState) tokenSnapshots(ctx context.Context, graph *subgraph.Client, resolver *blocks.Resolver, tokenAddress string, now int64) (*tokenSnapshot, *tokenSnapshot, []model.ProviderStatus, []string) {
	var statuses []model.ProviderStatus
	var warnings []string

	snapshotAt := func(label string, ts int64) *tokenSnapshot {
		began := time.Now()
		block, ok := resolver.BlockAt(ctx, ts)
		statuses = append(statuses, model.ProviderStatus{Name: blocksStatusName(s.selected), Status: "ok", LatencyMS: time.Since(began).Milliseconds()})
		if !ok {
			warnings = append(warnings, "no block resolved "+label+" ago; change metrics omitted")
			return nil
		}
		historical, err := graph.TokenAtBlock(ctx, tokenAddress, block.Number)
		if err != nil || historical == nil {
			warnings = append(warnings, "token snapshot "+label+" ago unavailable; change metrics omitted")
			return nil
		}
		price, err := graph.NativeCurrencyUSDPriceAtBlock(ctx, block.Number)
		if err != nil {
			warnings = append(warnings, "native price "+label+" ago unavailable; change metrics omitted")
			return nil
		}
		return &tokenSnapshot{token: historical, nativePrice: parseChartFloat(price)}
	}

	snap24 := snapshotAt("24h", now-int64(series.DayBucket))
	var snap48 *tokenSnapshot
	if snap24 != nil {
		snap48 = snapshotAt("48h", now-2*int64(series.DayBucket))
	}
	return snap24, snap48, statuses, warnings
}

func normalizeTokenMetric(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", metricVolume:
		return metricVolume, nil
	case metricLiquidity, metricTVL:
		return metricLiquidity, nil
	case metricPrice:
		return metricPrice, nil
	default:
		return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported metric: %s", input))
	}
}
