package registry

// ABI fragments used by the on-chain readers.
const (
	// PairFeeABI covers the swap-fee getter on DEX pair contracts. Pairs
	// deployed before the configurable-fee upgrade revert on this call and
	// fall back to the protocol default.
	PairFeeABI = `[
		{"name":"swapFee","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]}
	]`

	// ERC20MetadataABI covers the read-only token surface the analytics
	// layer needs.
	ERC20MetadataABI = `[
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
	]`
)
