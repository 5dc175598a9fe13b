package network

import (
	"fmt"
	"strconv"
	"strings"
)

// Network identifies one of the supported chains. The set is closed so that
// multi-network aggregation can iterate it exhaustively instead of walking
// dynamic map keys.
type Network int

const (
	Ethereum Network = iota
	ArbitrumOne
	Gnosis
)

type info struct {
	slug            string
	display         string
	chainID         uint64
	nativeSymbol    string
	nativeDecimals  int
	wrapperAddress  string
	secondsPerBlock int
}

var networks = map[Network]info{
	Ethereum: {
		slug:            "ethereum",
		display:         "Ethereum",
		chainID:         1,
		nativeSymbol:    "ETH",
		nativeDecimals:  18,
		wrapperAddress:  "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		secondsPerBlock: 12,
	},
	ArbitrumOne: {
		slug:            "arbitrum-one",
		display:         "Arbitrum One",
		chainID:         42161,
		nativeSymbol:    "ETH",
		nativeDecimals:  18,
		wrapperAddress:  "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
		secondsPerBlock: 1,
	},
	Gnosis: {
		slug:            "gnosis",
		display:         "Gnosis",
		chainID:         100,
		nativeSymbol:    "XDAI",
		nativeDecimals:  18,
		wrapperAddress:  "0xe91d153e0b41518a2ce8dd3d7944fa863463a97d",
		secondsPerBlock: 5,
	},
}

// All returns every supported network in a stable order.
func All() []Network {
	return []Network{Ethereum, ArbitrumOne, Gnosis}
}

func (n Network) Slug() string            { return networks[n].slug }
func (n Network) DisplayName() string     { return networks[n].display }
func (n Network) ChainID() uint64         { return networks[n].chainID }
func (n Network) NativeSymbol() string    { return networks[n].nativeSymbol }
func (n Network) NativeDecimals() int     { return networks[n].nativeDecimals }
func (n Network) WrapperAddress() string  { return networks[n].wrapperAddress }
func (n Network) String() string          { return networks[n].slug }

// IsValid reports whether n is one of the supported networks.
func (n Network) IsValid() bool {
	_, ok := networks[n]
	return ok
}

// Parse resolves a network from a slug, display name, or numeric chain ID.
func Parse(input string) (Network, error) {
	norm := strings.ToLower(strings.TrimSpace(input))
	if norm == "" {
		return 0, fmt.Errorf("network is required")
	}
	for n, meta := range networks {
		if norm == meta.slug || norm == strings.ToLower(meta.display) {
			return n, nil
		}
	}
	// Accept aliases seen in the wild.
	switch norm {
	case "mainnet", "eth":
		return Ethereum, nil
	case "arbitrum", "arb1":
		return ArbitrumOne, nil
	case "xdai", "gnosis-chain":
		return Gnosis, nil
	}
	if chainID, err := strconv.ParseUint(norm, 10, 64); err == nil {
		for n, meta := range networks {
			if meta.chainID == chainID {
				return n, nil
			}
		}
	}
	return 0, fmt.Errorf("unsupported network: %s", input)
}
