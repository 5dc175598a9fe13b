package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ggonzalez94/dexstats/internal/campaigns"
	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/model"
	"github.com/spf13/cobra"
)

// expiredLookback bounds how far back the expired-campaign listing reaches.
const expiredLookback = 30 * 24 * time.Hour

func (s *runtimeState) newCampaignsCommand() *cobra.Command {
	root := &cobra.Command{Use: "campaigns", Short: "Liquidity-mining campaign valuations"}

	var listStatus string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns with staked value and APY",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := normalizeCampaignStatus(listStatus)
			if err != nil {
				return err
			}
			req := map[string]any{"network": s.selected.Slug(), "status": status}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				summaries, statuses, err := s.fetchCampaignSummaries(ctx, status)
				if err != nil {
					return nil, statuses, nil, false, err
				}
				sort.Slice(summaries, func(i, j int) bool {
					if summaries[i].EndsAt != summaries[j].EndsAt {
						return summaries[i].EndsAt > summaries[j].EndsAt
					}
					return summaries[i].ID < summaries[j].ID
				})
				return summaries, statuses, nil, false, nil
			})
		},
	}
	listCmd.Flags().StringVar(&listStatus, "status", "active", "Campaign status filter (active|expired|all)")
	root.AddCommand(listCmd)

	var apyLimit int
	apyCmd := &cobra.Command{
		Use:   "apy",
		Short: "Rank active campaigns by APY",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"network": s.selected.Slug(), "limit": apyLimit}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, time.Minute, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				ranked, statuses, err := s.rankCampaignsByAPY(ctx)
				if err != nil {
					return nil, statuses, nil, false, err
				}
				if apyLimit > 0 && len(ranked) > apyLimit {
					ranked = ranked[:apyLimit]
				}
				return ranked, statuses, nil, false, nil
			})
		},
	}
	apyCmd.Flags().IntVar(&apyLimit, "limit", 20, "Maximum campaigns to return")
	root.AddCommand(apyCmd)

	return root
}

// fetchCampaigns pulls and values every campaign matching the status filter,
// along with the native-currency USD price used for the summaries.
func (s *runtimeState) fetchCampaigns(ctx context.Context, status string) ([]campaigns.Campaign, string, []model.ProviderStatus, error) {
	graph, err := s.graph(s.selected)
	if err != nil {
		return nil, "", nil, err
	}
	now := s.runner.now().UTC().Unix()
	lowerTimeLimit := now
	if status == "expired" || status == "all" {
		lowerTimeLimit = now - int64(expiredLookback.Seconds())
	}

	began := time.Now()
	records, err := graph.Campaigns(ctx, lowerTimeLimit)
	statuses := []model.ProviderStatus{{Name: subgraphStatusName(s.selected), Status: statusFromErr(err), LatencyMS: time.Since(began).Milliseconds()}}
	if err != nil {
		return nil, "", statuses, err
	}
	kpiTokens, err := graph.KPITokens(ctx)
	if err != nil {
		return nil, "", statuses, err
	}
	nativePrice, err := graph.NativeCurrencyUSDPrice(ctx)
	if err != nil {
		return nil, "", statuses, err
	}

	built := make([]campaigns.Campaign, 0, len(records))
	for _, record := range records {
		campaign, err := campaigns.Build(record, kpiTokens, now)
		if err != nil {
			return nil, "", statuses, clierr.Wrap(clierr.CodeUnavailable, "value campaign", err)
		}
		switch status {
		case "active":
			if campaign.Expired(now) {
				continue
			}
		case "expired":
			if !campaign.Expired(now) {
				continue
			}
		}
		built = append(built, campaign)
	}
	return built, nativePrice, statuses, nil
}

func (s *runtimeState) fetchCampaignSummaries(ctx context.Context, status string) ([]model.CampaignSummary, []model.ProviderStatus, error) {
	built, nativePrice, statuses, err := s.fetchCampaigns(ctx, status)
	if err != nil {
		return nil, statuses, err
	}
	now := s.runner.now().UTC().Unix()
	summaries := make([]model.CampaignSummary, 0, len(built))
	for _, campaign := range built {
		summary, err := s.campaignSummary(campaign, nativePrice, now)
		if err != nil {
			return nil, statuses, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, statuses, nil
}

func (s *runtimeState) rankCampaignsByAPY(ctx context.Context) ([]model.CampaignSummary, []model.ProviderStatus, error) {
	built, nativePrice, statuses, err := s.fetchCampaigns(ctx, "active")
	if err != nil {
		return nil, statuses, err
	}
	sort.Slice(built, func(i, j int) bool {
		if c := built[i].APY.Cmp(built[j].APY); c != 0 {
			return c > 0
		}
		return built[i].ID < built[j].ID
	})
	now := s.runner.now().UTC().Unix()
	summaries := make([]model.CampaignSummary, 0, len(built))
	for _, campaign := range built {
		summary, err := s.campaignSummary(campaign, nativePrice, now)
		if err != nil {
			return nil, statuses, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, statuses, nil
}

func (s *runtimeState) campaignSummary(campaign campaigns.Campaign, nativePrice string, now int64) (model.CampaignSummary, error) {
	stakedUSD, err := campaigns.USDValue(campaign.StakedNativeValue, nativePrice)
	if err != nil {
		return model.CampaignSummary{}, clierr.Wrap(clierr.CodeUnavailable, "value staked amount", err)
	}

	rewards, err := summarizeRewards(campaign.Rewards, nativePrice)
	if err != nil {
		return model.CampaignSummary{}, err
	}
	kpiRewards, err := summarizeRewards(campaign.KPIRewards, nativePrice)
	if err != nil {
		return model.CampaignSummary{}, err
	}

	return model.CampaignSummary{
		ID:          campaign.ID,
		Network:     s.selected.Slug(),
		PairAddress: strings.ToLower(campaign.PairAddress),
		PairName:    campaign.Token0Symbol + "/" + campaign.Token1Symbol,
		Status:      campaignStatusLabel(campaign, now),
		StartsAt:    campaign.StartsAt,
		EndsAt:      campaign.EndsAt,
		Locked:      campaign.Locked,
		StakedUSD:   stakedUSD.ToFixed(2),
		StakingCap:  campaign.StakingCap.Decimal(),
		APY:         campaign.APY.ToFixed(2),
		KPIAPY:      campaign.KPIAPY.ToFixed(2),
		Rewards:     rewards,
		KPIRewards:  kpiRewards,
		FetchedAt:   s.runner.now().UTC().Format(time.RFC3339),
	}, nil
}

func summarizeRewards(rewards []campaigns.Reward, nativePrice string) ([]model.CampaignReward, error) {
	out := make([]model.CampaignReward, 0, len(rewards))
	for _, reward := range rewards {
		usd, err := campaigns.USDValue(reward.NativeCurrencyValue, nativePrice)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeUnavailable, "value campaign reward", err)
		}
		out = append(out, model.CampaignReward{
			TokenAddress: reward.TokenAddress,
			TokenSymbol:  reward.TokenSymbol,
			Amount:       reward.Amount.ToSignificant(8),
			AmountUSD:    usd.ToFixed(2),
		})
	}
	return out, nil
}

func campaignStatusLabel(campaign campaigns.Campaign, now int64) string {
	switch {
	case campaign.Expired(now):
		return "expired"
	case campaign.Active(now):
		return "active"
	default:
		return "upcoming"
	}
}

func normalizeCampaignStatus(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "active":
		return "active", nil
	case "expired":
		return "expired", nil
	case "all":
		return "all", nil
	default:
		return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unsupported status: %s", input))
	}
}
