package subgraph

// Raw records mirror the subgraph response shapes. BigDecimal and BigInt
// fields arrive as strings and stay strings here; parsing into amounts or
// chart floats happens in the consuming layer so a fetched record is an
// immutable snapshot.

type ProtocolDayData struct {
	Date              int64  `json:"date"`
	DailyVolumeUSD    string `json:"dailyVolumeUSD"`
	TotalLiquidityUSD string `json:"totalLiquidityUSD"`
	TxCount           string `json:"txCount"`
}

type PairDayData struct {
	Date              int64  `json:"date"`
	PairAddress       string `json:"pairAddress"`
	DailyVolumeUSD    string `json:"dailyVolumeUSD"`
	ReserveUSD        string `json:"reserveUSD"`
	DailyTxns         string `json:"dailyTxns"`
	Reserve0          string `json:"reserve0"`
	Reserve1          string `json:"reserve1"`
	TotalSupply       string `json:"totalSupply"`
}

type TokenDayData struct {
	Date              int64  `json:"date"`
	DailyVolumeUSD    string `json:"dailyVolumeUSD"`
	TotalLiquidityUSD string `json:"totalLiquidityUSD"`
	PriceUSD          string `json:"priceUSD"`
	DailyTxns         string `json:"dailyTxns"`
}

type TokenRef struct {
	Address  string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals string `json:"decimals"`
	// DerivedNativeCurrency is the token price expressed in the network's
	// native currency.
	DerivedNativeCurrency string `json:"derivedNativeCurrency"`
}

type Pair struct {
	Address               string   `json:"id"`
	Token0                TokenRef `json:"token0"`
	Token1                TokenRef `json:"token1"`
	Reserve0              string   `json:"reserve0"`
	Reserve1              string   `json:"reserve1"`
	ReserveUSD            string   `json:"reserveUSD"`
	ReserveNativeCurrency string   `json:"reserveNativeCurrency"`
	TotalSupply           string   `json:"totalSupply"`
	VolumeUSD             string   `json:"volumeUSD"`
	TxCount               string   `json:"txCount"`
}

type Token struct {
	Address               string `json:"id"`
	Symbol                string `json:"symbol"`
	Name                  string `json:"name"`
	Decimals              string `json:"decimals"`
	TotalLiquidity        string `json:"totalLiquidity"`
	TradeVolumeUSD        string `json:"tradeVolumeUSD"`
	TxCount               string `json:"txCount"`
	DerivedNativeCurrency string `json:"derivedNativeCurrency"`
}

type Bundle struct {
	NativeCurrencyPrice string `json:"nativeCurrencyPrice"`
}

type RewardRecord struct {
	Token  TokenRef `json:"token"`
	Amount string   `json:"amount"`
}

type CampaignRecord struct {
	ID              string         `json:"id"`
	Owner           string         `json:"owner"`
	StartsAt        string         `json:"startsAt"`
	EndsAt          string         `json:"endsAt"`
	Duration        string         `json:"duration"`
	Locked          bool           `json:"locked"`
	StakingCap      string         `json:"stakingCap"`
	StakedAmount    string         `json:"stakedAmount"`
	StakablePair    Pair           `json:"stakablePair"`
	Rewards         []RewardRecord `json:"rewards"`
}

type KPITokenRecord struct {
	Address          string   `json:"id"`
	Symbol           string   `json:"symbol"`
	TotalSupply      string   `json:"totalSupply"`
	Collateral       TokenRef `json:"collateralToken"`
	CollateralAmount string   `json:"collateralAmount"`
}
