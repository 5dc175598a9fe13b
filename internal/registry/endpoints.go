package registry

import (
	"fmt"
	"strings"

	"github.com/ggonzalez94/dexstats/internal/network"
)

// Canonical default endpoints per network. Every value can be overridden via
// config; these are used whenever a command does not pass an override.

var dexSubgraphByNetwork = map[network.Network]string{
	network.Ethereum:    "https://api.thegraph.com/subgraphs/name/swapr/swapr-mainnet",
	network.ArbitrumOne: "https://api.thegraph.com/subgraphs/name/swapr/swapr-arbitrum-one",
	network.Gnosis:      "https://api.thegraph.com/subgraphs/name/swapr/swapr-xdai",
}

var blocksSubgraphByNetwork = map[network.Network]string{
	network.Ethereum:    "https://api.thegraph.com/subgraphs/name/blocklytics/ethereum-blocks",
	network.ArbitrumOne: "https://api.thegraph.com/subgraphs/name/dodoex/arbitrum-one-blocks",
	network.Gnosis:      "https://api.thegraph.com/subgraphs/name/1hive/xdai-blocks",
}

var defaultRPCByNetwork = map[network.Network]string{
	network.Ethereum:    "https://eth.llamarpc.com",
	network.ArbitrumOne: "https://arb1.arbitrum.io/rpc",
	network.Gnosis:      "https://rpc.gnosischain.com",
}

func DexSubgraphURL(n network.Network) (string, bool) {
	value, ok := dexSubgraphByNetwork[n]
	return value, ok
}

func BlocksSubgraphURL(n network.Network) (string, bool) {
	value, ok := blocksSubgraphByNetwork[n]
	return value, ok
}

func DefaultRPCURL(n network.Network) (string, bool) {
	value, ok := defaultRPCByNetwork[n]
	return value, ok
}

// ResolveEndpoint prefers a non-empty override, then the registry default.
func ResolveEndpoint(override string, fallback string, ok bool, kind string, n network.Network) (string, error) {
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	if !ok {
		return "", fmt.Errorf("no default %s endpoint for network %s", kind, n.Slug())
	}
	return fallback, nil
}

// ResolveDexSubgraphURL returns the DEX subgraph endpoint for n.
func ResolveDexSubgraphURL(override string, n network.Network) (string, error) {
	value, ok := DexSubgraphURL(n)
	return ResolveEndpoint(override, value, ok, "subgraph", n)
}

// ResolveBlocksSubgraphURL returns the blocks subgraph endpoint for n.
func ResolveBlocksSubgraphURL(override string, n network.Network) (string, error) {
	value, ok := BlocksSubgraphURL(n)
	return ResolveEndpoint(override, value, ok, "blocks subgraph", n)
}

// ResolveRPCURL returns the JSON-RPC endpoint for n.
func ResolveRPCURL(override string, n network.Network) (string, error) {
	value, ok := DefaultRPCURL(n)
	return ResolveEndpoint(override, value, ok, "rpc", n)
}
