package subgraph

// Query catalog. Every document the client ever sends lives here; callers
// pick one by name and supply variables, never raw query strings.

const protocolDayDatasQuery = `query protocolDayDatas($startTime: Int!, $first: Int!, $skip: Int!) {
  swaprDayDatas(first: $first, skip: $skip, where: { date_gt: $startTime }, orderBy: date, orderDirection: asc) {
    date
    dailyVolumeUSD
    totalLiquidityUSD
    txCount
  }
}`

const pairDayDatasQuery = `query pairDayDatas($pairAddress: Bytes!, $startTime: Int!, $first: Int!, $skip: Int!) {
  pairDayDatas(first: $first, skip: $skip, orderBy: date, orderDirection: asc, where: { pairAddress: $pairAddress, date_gt: $startTime }) {
    date
    pairAddress
    dailyVolumeUSD
    reserveUSD
    dailyTxns
    reserve0
    reserve1
    totalSupply
  }
}`

const tokenDayDatasQuery = `query tokenDayDatas($tokenAddress: Bytes!, $startTime: Int!, $first: Int!, $skip: Int!) {
  tokenDayDatas(first: $first, skip: $skip, orderBy: date, orderDirection: asc, where: { token: $tokenAddress, date_gt: $startTime }) {
    date
    dailyVolumeUSD
    totalLiquidityUSD
    priceUSD
    dailyTxns
  }
}`

const pairQuery = `query pair($pairAddress: ID!) {
  pair(id: $pairAddress) {
    id
    token0 { id symbol name decimals derivedNativeCurrency }
    token1 { id symbol name decimals derivedNativeCurrency }
    reserve0
    reserve1
    reserveUSD
    reserveNativeCurrency
    totalSupply
    volumeUSD
    txCount
  }
}`

const pairAtBlockQuery = `query pairAtBlock($pairAddress: ID!, $block: Int!) {
  pair(id: $pairAddress, block: { number: $block }) {
    id
    token0 { id symbol name decimals derivedNativeCurrency }
    token1 { id symbol name decimals derivedNativeCurrency }
    reserve0
    reserve1
    reserveUSD
    reserveNativeCurrency
    totalSupply
    volumeUSD
    txCount
  }
}`

const tokenQuery = `query token($tokenAddress: ID!) {
  token(id: $tokenAddress) {
    id
    symbol
    name
    decimals
    totalLiquidity
    tradeVolumeUSD
    txCount
    derivedNativeCurrency
  }
}`

const tokenAtBlockQuery = `query tokenAtBlock($tokenAddress: ID!, $block: Int!) {
  token(id: $tokenAddress, block: { number: $block }) {
    id
    symbol
    name
    decimals
    totalLiquidity
    tradeVolumeUSD
    txCount
    derivedNativeCurrency
  }
}`

const bundleQuery = `query bundle {
  bundle(id: "1") {
    nativeCurrencyPrice
  }
}`

const bundleAtBlockQuery = `query bundleAtBlock($block: Int!) {
  bundle(id: "1", block: { number: $block }) {
    nativeCurrencyPrice
  }
}`

const campaignsQuery = `query campaigns($lowerTimeLimit: BigInt!, $first: Int!, $skip: Int!) {
  liquidityMiningCampaigns(first: $first, skip: $skip, where: { endsAt_gt: $lowerTimeLimit }) {
    id
    owner
    startsAt
    endsAt
    duration
    locked
    stakingCap
    stakedAmount
    stakablePair {
      id
      token0 { id symbol name decimals derivedNativeCurrency }
      token1 { id symbol name decimals derivedNativeCurrency }
      reserve0
      reserve1
      reserveUSD
      reserveNativeCurrency
      totalSupply
      volumeUSD
      txCount
    }
    rewards {
      token { id symbol name decimals derivedNativeCurrency }
      amount
    }
  }
}`

const kpiTokensQuery = `query kpiTokens($first: Int!, $skip: Int!) {
  kpiTokens(first: $first, skip: $skip) {
    id
    symbol
    totalSupply
    collateralToken { id symbol name decimals derivedNativeCurrency }
    collateralAmount
  }
}`
