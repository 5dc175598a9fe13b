package campaigns

import (
	"testing"

	"github.com/ggonzalez94/dexstats/internal/amount"
	"github.com/ggonzalez94/dexstats/internal/subgraph"
)

func TestLPTokenPrice(t *testing.T) {
	reserve, _ := amount.NewFromDecimal("100", 18)
	supply, _ := amount.NewFromDecimal("50", 18)
	price := LPTokenPrice(reserve, supply)
	if got := price.ToFixed(2); got != "2.00" {
		t.Fatalf("expected 2.00, got %s", got)
	}
}

func TestLPTokenPriceZeroSupply(t *testing.T) {
	reserve, _ := amount.NewFromDecimal("42", 18)
	price := LPTokenPrice(reserve, amount.Zero(18))
	if got := price.ToFixed(2); got != "42.00" {
		t.Fatalf("expected reserve passthrough 42.00, got %s", got)
	}
}

func TestAnnualize(t *testing.T) {
	rewards := amount.FractionFromInt(1)
	staked := amount.FractionFromInt(2)
	// Half a year remaining doubles the period yield.
	apy := Annualize(rewards, staked, 31536000/2)
	if got := apy.ToFixed(2); got != "100.00" {
		t.Fatalf("expected 100.00, got %s", got)
	}
}

func TestAnnualizeZeroStake(t *testing.T) {
	apy := Annualize(amount.FractionFromInt(10), amount.ZeroFraction(), 1000)
	if !apy.IsZero() {
		t.Fatalf("expected zero APY on zero stake, got %s", apy.ToFixed(4))
	}
}

func TestAnnualizeExpired(t *testing.T) {
	rewards := amount.FractionFromInt(10)
	staked := amount.FractionFromInt(5)
	if apy := Annualize(rewards, staked, 0); !apy.IsZero() {
		t.Fatalf("expected zero APY at zero remaining, got %s", apy.ToFixed(4))
	}
	if apy := Annualize(rewards, staked, -50); !apy.IsZero() {
		t.Fatalf("expected zero APY past end, got %s", apy.ToFixed(4))
	}
}

func TestUSDValue(t *testing.T) {
	usd, err := USDValue(amount.FractionFromInt(2), "1.5")
	if err != nil {
		t.Fatalf("USDValue failed: %v", err)
	}
	if got := usd.ToFixed(2); got != "3.00" {
		t.Fatalf("expected 3.00, got %s", got)
	}
}

func TestUSDValueRejectsMalformedPrice(t *testing.T) {
	if _, err := USDValue(amount.FractionFromInt(1), "not-a-price"); err == nil {
		t.Fatal("expected malformed price rejection")
	}
}

func testCampaignRecord() subgraph.CampaignRecord {
	return subgraph.CampaignRecord{
		ID:           "0xc0ffee",
		Owner:        "0xowner",
		StartsAt:     "1000",
		EndsAt:       "31537000",
		Locked:       true,
		StakingCap:   "500",
		StakedAmount: "10",
		StakablePair: subgraph.Pair{
			Address:               "0xPairAddress",
			Token0:                subgraph.TokenRef{Symbol: "WETH"},
			Token1:                subgraph.TokenRef{Symbol: "WXDAI"},
			ReserveNativeCurrency: "100",
			TotalSupply:           "50",
		},
		Rewards: []subgraph.RewardRecord{
			{
				Token: subgraph.TokenRef{
					Address:               "0xAAA",
					Symbol:                "RWD",
					Decimals:              "18",
					DerivedNativeCurrency: "0.1",
				},
				Amount: "100",
			},
			{
				Token: subgraph.TokenRef{
					Address:               "0xBBB",
					Symbol:                "KPI",
					Decimals:              "18",
					DerivedNativeCurrency: "0.2",
				},
				Amount: "50",
			},
		},
	}
}

func TestBuildSeparatesKPIRewards(t *testing.T) {
	kpiTokens := []subgraph.KPITokenRecord{{Address: "0xbbb", Symbol: "KPI"}}

	// One year of runway: startsAt 1000, endsAt 1000+secondsPerYear, now at start.
	campaign, err := Build(testCampaignRecord(), kpiTokens, 1000)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(campaign.Rewards) != 1 || campaign.Rewards[0].TokenSymbol != "RWD" {
		t.Fatalf("unexpected plain rewards: %+v", campaign.Rewards)
	}
	if len(campaign.KPIRewards) != 1 || campaign.KPIRewards[0].TokenSymbol != "KPI" {
		t.Fatalf("unexpected kpi rewards: %+v", campaign.KPIRewards)
	}

	// Share price 100/50=2, staked value 10*2=20 native.
	if got := campaign.StakedNativeValue.ToFixed(2); got != "20.00" {
		t.Fatalf("expected staked value 20.00, got %s", got)
	}
	// Plain rewards 100*0.1=10 native over one year: 10/20*100 = 50%.
	if got := campaign.APY.ToFixed(2); got != "50.00" {
		t.Fatalf("expected APY 50.00, got %s", got)
	}
	// KPI rewards 50*0.2=10 native annualize the same but stay separate.
	if got := campaign.KPIAPY.ToFixed(2); got != "50.00" {
		t.Fatalf("expected KPI APY 50.00, got %s", got)
	}

	if campaign.PairAddress != "0xPairAddress" {
		t.Fatalf("unexpected pair address: %s", campaign.PairAddress)
	}
	if campaign.Rewards[0].TokenAddress != "0xaaa" {
		t.Fatalf("expected lowercased reward token address, got %s", campaign.Rewards[0].TokenAddress)
	}
	if !campaign.Locked {
		t.Fatal("expected locked campaign")
	}
}

func TestBuildExpiredCampaignHasZeroAPY(t *testing.T) {
	record := testCampaignRecord()
	now := int64(31537000) // exactly endsAt

	campaign, err := Build(record, nil, now)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !campaign.Expired(now) {
		t.Fatal("expected expired campaign")
	}
	if !campaign.APY.IsZero() {
		t.Fatalf("expected zero APY for expired campaign, got %s", campaign.APY.ToFixed(4))
	}
}

func TestCampaignLifecycleLabels(t *testing.T) {
	c := Campaign{StartsAt: 100, EndsAt: 200}
	if !c.Active(150) || c.Expired(150) {
		t.Fatal("expected active at 150")
	}
	if c.Active(50) || c.Expired(50) {
		t.Fatal("expected upcoming at 50")
	}
	if c.Active(200) || !c.Expired(200) {
		t.Fatal("expected expired at 200")
	}
}

func TestBuildRejectsMalformedTimestamps(t *testing.T) {
	record := testCampaignRecord()
	record.StartsAt = "soon"
	if _, err := Build(record, nil, 0); err == nil {
		t.Fatal("expected malformed startsAt rejection")
	}
}
