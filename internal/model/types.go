package model

import "time"

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string           `json:"request_id"`
	Timestamp time.Time        `json:"timestamp"`
	Command   string           `json:"command"`
	Providers []ProviderStatus `json:"providers,omitempty"`
	Cache     CacheStatus      `json:"cache"`
	Partial   bool             `json:"partial"`
}

type ProviderStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

type CacheStatus struct {
	Status string `json:"status"`
	AgeMS  int64  `json:"age_ms"`
	Stale  bool   `json:"stale"`
}

// NetworkInfo describes one supported network.
type NetworkInfo struct {
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
	ChainID        int64  `json:"chain_id"`
	NativeCurrency string `json:"native_currency"`
	Selected       bool   `json:"selected"`
}

// ChartPoint is one calendar bucket of a single-valued series.
type ChartPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// StackedChartPoint is one calendar bucket of a multi-network series. Keys
// are network slugs; a network with no data point at this time is absent
// rather than zero.
type StackedChartPoint struct {
	Time   string             `json:"time"`
	Values map[string]float64 `json:"values"`
}

// Chart is a rendered series plus the scope it was built over.
type Chart struct {
	Metric    string       `json:"metric"`
	Bucket    string       `json:"bucket"`
	Networks  []string     `json:"networks"`
	Points    []ChartPoint `json:"points,omitempty"`
	FetchedAt string       `json:"fetched_at"`
}

// StackedChart keeps per-network values side by side for stacked rendering.
type StackedChart struct {
	Metric    string              `json:"metric"`
	Bucket    string              `json:"bucket"`
	Networks  []string            `json:"networks"`
	Points    []StackedChartPoint `json:"points,omitempty"`
	FetchedAt string              `json:"fetched_at"`
}

// ProtocolStats is the headline dashboard block: current levels plus the
// derived change metrics.
type ProtocolStats struct {
	Networks             []string `json:"networks"`
	TVLUSD               float64  `json:"tvl_usd"`
	TVLChangePct         float64  `json:"tvl_change_pct"`
	Volume24hUSD         float64  `json:"volume_24h_usd"`
	Volume48hUSD         float64  `json:"volume_48h_usd"`
	VolumeChangePct      float64  `json:"volume_change_pct"`
	VolumeDeltaUSD       float64  `json:"volume_delta_usd"`
	VolumeDeltaChangePct float64  `json:"volume_delta_change_pct"`
	TxCount24h           int64    `json:"tx_count_24h"`
	FetchedAt            string   `json:"fetched_at"`
}

// PairStats is the per-pair stat block.
type PairStats struct {
	Network          string  `json:"network"`
	PairAddress      string  `json:"pair_address"`
	Token0Symbol     string  `json:"token0_symbol"`
	Token1Symbol     string  `json:"token1_symbol"`
	ReserveUSD       float64 `json:"reserve_usd"`
	ReserveChangePct float64 `json:"reserve_change_pct"`
	Volume24hUSD     float64 `json:"volume_24h_usd"`
	Volume48hUSD     float64 `json:"volume_48h_usd"`
	VolumeChangePct  float64 `json:"volume_change_pct"`
	Fees24hUSD       float64 `json:"fees_24h_usd"`
	SwapFeeBips      uint32  `json:"swap_fee_bips"`
	Token0Price      string  `json:"token0_price"`
	Token1Price      string  `json:"token1_price"`
	FetchedAt        string  `json:"fetched_at"`
}

// TokenStats is the per-token stat block.
type TokenStats struct {
	Network           string  `json:"network"`
	TokenAddress      string  `json:"token_address"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	PriceUSD          string  `json:"price_usd"`
	PriceChangePct    float64 `json:"price_change_pct"`
	Volume24hUSD      float64 `json:"volume_24h_usd"`
	Volume48hUSD      float64 `json:"volume_48h_usd"`
	VolumeChangePct   float64 `json:"volume_change_pct"`
	LiquidityUSD      float64 `json:"liquidity_usd"`
	LiquidityChange   float64 `json:"liquidity_change_pct"`
	FetchedAt         string  `json:"fetched_at"`
}

// CampaignReward is one valued reward bucket of a liquidity-mining campaign.
type CampaignReward struct {
	TokenAddress string `json:"token_address"`
	TokenSymbol  string `json:"token_symbol"`
	Amount       string `json:"amount"`
	AmountUSD    string `json:"amount_usd"`
}

// CampaignSummary is the chart-ready view of one liquidity-mining campaign.
// APY fields are decimal strings rendered from exact fractions; KPI-token
// rewards are reported separately and never folded into the headline APY.
type CampaignSummary struct {
	ID           string           `json:"id"`
	Network      string           `json:"network"`
	PairAddress  string           `json:"pair_address"`
	PairName     string           `json:"pair_name"`
	Status       string           `json:"status"`
	StartsAt     int64            `json:"starts_at"`
	EndsAt       int64            `json:"ends_at"`
	Locked       bool             `json:"locked"`
	StakedUSD    string           `json:"staked_usd"`
	StakingCap   string           `json:"staking_cap"`
	APY          string           `json:"apy"`
	KPIAPY       string           `json:"kpi_apy"`
	Rewards      []CampaignReward `json:"rewards,omitempty"`
	KPIRewards   []CampaignReward `json:"kpi_rewards,omitempty"`
	FetchedAt    string           `json:"fetched_at"`
}

// BlockInfo is a resolved timestamp-to-block mapping.
type BlockInfo struct {
	Network     string `json:"network"`
	Timestamp   int64  `json:"timestamp"`
	BlockNumber int64  `json:"block_number"`
	BlockTime   int64  `json:"block_time"`
}
