// Package campaigns values liquidity-mining campaigns: LP share pricing,
// staked value, reward valuation with the KPI-token carve-out, and APY
// annualization. All arithmetic on amounts is exact rational; float64 appears
// only in the chart-facing summaries built by the app layer.
package campaigns

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ggonzalez94/dexstats/internal/amount"
	"github.com/ggonzalez94/dexstats/internal/subgraph"
)

const (
	secondsPerYear = 31536000

	// lpDecimals is the precision of Uniswap-v2-style LP share tokens.
	lpDecimals = 18
	// nativeDecimals is the precision used for native-currency valuations.
	nativeDecimals = 18
)

// Reward is one reward bucket of a campaign, valued in native currency at
// construction time.
type Reward struct {
	TokenAddress        string
	TokenSymbol         string
	Amount              amount.TokenAmount
	NativeCurrencyValue amount.Fraction
}

// Campaign is the immutable valuation of one liquidity-mining campaign,
// rebuilt from scratch on every fetch rather than mutated.
type Campaign struct {
	ID           string
	Owner        string
	PairAddress  string
	Token0Symbol string
	Token1Symbol string
	StartsAt     int64
	EndsAt       int64
	Locked       bool
	StakingCap   amount.TokenAmount

	Staked            amount.TokenAmount
	StakedNativeValue amount.Fraction

	Rewards    []Reward
	KPIRewards []Reward

	// APY and KPIAPY are exact rational percentages. KPI rewards are
	// contingent on an external goal, so their annualization is never
	// folded into the headline APY.
	APY    amount.Fraction
	KPIAPY amount.Fraction
}

// Expired reports whether the campaign has ended as of now. APY for an
// expired campaign is 0 by construction; this is the check callers use to
// label it.
func (c Campaign) Expired(now int64) bool {
	return c.EndsAt <= now
}

// Active reports whether the campaign is currently emitting rewards.
func (c Campaign) Active(now int64) bool {
	return c.StartsAt <= now && now < c.EndsAt
}

// LPTokenPrice prices one LP share in native currency: reserve divided by
// total supply, as an exact fraction. When total supply is zero no shares
// have been minted yet; the denominator collapses to 1 so the division is
// defined without faking a price.
func LPTokenPrice(reserveNativeCurrency, totalSupply amount.TokenAmount) amount.Fraction {
	reserve := reserveNativeCurrency.Fraction()
	if totalSupply.IsZero() {
		return reserve
	}
	price, err := reserve.Div(totalSupply.Fraction())
	if err != nil {
		// Unreachable: the zero case is handled above.
		return reserve
	}
	return price
}

// Annualize scales a period yield into a percent APY. A zero staked value or
// an elapsed duration yields 0: the engine owns the zero-stake guard so no
// caller can reintroduce the division by zero, and expired campaigns are
// labeled via EndsAt rather than through a meaningless annualization.
func Annualize(rewardsNativeValue, stakedNativeValue amount.Fraction, remainingSeconds int64) amount.Fraction {
	if stakedNativeValue.IsZero() || remainingSeconds <= 0 {
		return amount.ZeroFraction()
	}
	yield, err := rewardsNativeValue.Div(stakedNativeValue)
	if err != nil {
		return amount.ZeroFraction()
	}
	multiplier := amount.FractionFromInt(secondsPerYear)
	period, err := multiplier.Div(amount.FractionFromInt(remainingSeconds))
	if err != nil {
		return amount.ZeroFraction()
	}
	return yield.Mul(period).Mul(amount.FractionFromInt(100))
}

// Build values one raw campaign record. kpiTokens identifies reward tokens
// that are KPI tokens; their rewards are valued separately. now anchors the
// remaining-duration annualization.
func Build(record subgraph.CampaignRecord, kpiTokens []subgraph.KPITokenRecord, now int64) (Campaign, error) {
	startsAt, err := strconv.ParseInt(record.StartsAt, 10, 64)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s startsAt: %w", record.ID, err)
	}
	endsAt, err := strconv.ParseInt(record.EndsAt, 10, 64)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s endsAt: %w", record.ID, err)
	}

	pair := record.StakablePair
	reserveNative, err := amount.ParseDecimal(pair.ReserveNativeCurrency, nativeDecimals)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s reserve: %w", record.ID, err)
	}
	totalSupply, err := amount.ParseDecimal(pair.TotalSupply, lpDecimals)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s total supply: %w", record.ID, err)
	}
	staked, err := amount.ParseDecimal(record.StakedAmount, lpDecimals)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s staked amount: %w", record.ID, err)
	}
	stakingCap, err := amount.ParseDecimal(record.StakingCap, lpDecimals)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s staking cap: %w", record.ID, err)
	}

	sharePrice := LPTokenPrice(reserveNative, totalSupply)
	stakedNativeValue := staked.Fraction().Mul(sharePrice)

	kpiSet := make(map[string]struct{}, len(kpiTokens))
	for _, kpi := range kpiTokens {
		kpiSet[strings.ToLower(kpi.Address)] = struct{}{}
	}

	var rewards, kpiRewards []Reward
	rewardsValue := amount.ZeroFraction()
	kpiValue := amount.ZeroFraction()
	for _, raw := range record.Rewards {
		reward, err := buildReward(raw)
		if err != nil {
			return Campaign{}, fmt.Errorf("campaign %s: %w", record.ID, err)
		}
		if _, isKPI := kpiSet[strings.ToLower(raw.Token.Address)]; isKPI {
			kpiRewards = append(kpiRewards, reward)
			kpiValue = kpiValue.Add(reward.NativeCurrencyValue)
			continue
		}
		rewards = append(rewards, reward)
		rewardsValue = rewardsValue.Add(reward.NativeCurrencyValue)
	}

	remaining := endsAt - now

	return Campaign{
		ID:                record.ID,
		Owner:             record.Owner,
		PairAddress:       pair.Address,
		Token0Symbol:      pair.Token0.Symbol,
		Token1Symbol:      pair.Token1.Symbol,
		StartsAt:          startsAt,
		EndsAt:            endsAt,
		Locked:            record.Locked,
		StakingCap:        stakingCap,
		Staked:            staked,
		StakedNativeValue: stakedNativeValue,
		Rewards:           rewards,
		KPIRewards:        kpiRewards,
		APY:               Annualize(rewardsValue, stakedNativeValue, remaining),
		KPIAPY:            Annualize(kpiValue, stakedNativeValue, remaining),
	}, nil
}

func buildReward(raw subgraph.RewardRecord) (Reward, error) {
	decimals, err := strconv.Atoi(raw.Token.Decimals)
	if err != nil || decimals < 0 {
		return Reward{}, fmt.Errorf("reward token %s decimals %q", raw.Token.Address, raw.Token.Decimals)
	}
	qty, err := amount.ParseDecimal(raw.Amount, decimals)
	if err != nil {
		return Reward{}, fmt.Errorf("reward token %s amount: %w", raw.Token.Address, err)
	}
	derived := raw.Token.DerivedNativeCurrency
	if strings.TrimSpace(derived) == "" {
		derived = "0"
	}
	price, err := amount.ParseDecimal(derived, nativeDecimals)
	if err != nil {
		return Reward{}, fmt.Errorf("reward token %s price: %w", raw.Token.Address, err)
	}
	return Reward{
		TokenAddress:        strings.ToLower(raw.Token.Address),
		TokenSymbol:         raw.Token.Symbol,
		Amount:              qty,
		NativeCurrencyValue: qty.Fraction().Mul(price.Fraction()),
	}, nil
}

// USDValue converts a native-currency fraction into USD using the bundle
// price (a decimal string from the subgraph).
func USDValue(nativeValue amount.Fraction, nativeUSDPrice string) (amount.Fraction, error) {
	price, err := amount.ParseDecimal(nativeUSDPrice, nativeDecimals)
	if err != nil {
		return amount.Fraction{}, fmt.Errorf("native currency USD price: %w", err)
	}
	return nativeValue.Mul(price.Fraction()), nil
}
