// Package onchain reads the few values the subgraphs do not index reliably:
// per-pair swap fees and ERC-20 metadata. Calls are batched over raw JSON-RPC
// so a page of pairs costs one round trip.
package onchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/registry"
)

const (
	// DefaultSwapFeeBips is the protocol default fee. Pairs deployed before
	// the configurable-fee upgrade revert on swapFee() and are assumed to
	// charge the default.
	DefaultSwapFeeBips = 30

	// callBatchSize bounds eth_call batches; public RPC endpoints commonly
	// reject larger batches.
	callBatchSize = 100
)

// TokenMetadata is the on-chain read-only surface of an ERC-20.
type TokenMetadata struct {
	Address     string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// Reader batches read-only contract calls against one JSON-RPC endpoint.
type Reader struct {
	client   *rpc.Client
	pairABI  abi.ABI
	erc20ABI abi.ABI
}

// Dial connects a reader to an RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*Reader, error) {
	client, err := rpc.DialContext(ctx, strings.TrimSpace(rpcURL))
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "connect rpc", err)
	}
	return NewReader(client)
}

// NewReader wraps an existing RPC client. The reader takes ownership; Close
// closes the underlying client.
func NewReader(client *rpc.Client) (*Reader, error) {
	pairABI, err := abi.JSON(strings.NewReader(registry.PairFeeABI))
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "parse pair abi", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(registry.ERC20MetadataABI))
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "parse erc20 abi", err)
	}
	return &Reader{client: client, pairABI: pairABI, erc20ABI: erc20ABI}, nil
}

func (r *Reader) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// SwapFees resolves the swap fee in bips for each pair address. Pairs whose
// swapFee() call reverts map to DefaultSwapFeeBips. The returned map is keyed
// by lowercased address. An error is returned only when the batch itself
// cannot be delivered.
func (r *Reader) SwapFees(ctx context.Context, pairAddresses []string) (map[string]uint32, error) {
	fees := make(map[string]uint32, len(pairAddresses))
	if len(pairAddresses) == 0 {
		return fees, nil
	}

	calldata, err := r.pairABI.Pack("swapFee")
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack swapFee call", err)
	}

	normalized := make([]string, 0, len(pairAddresses))
	for _, addr := range pairAddresses {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if !common.IsHexAddress(addr) {
			return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid pair address %q", addr))
		}
		normalized = append(normalized, addr)
	}

	for offset := 0; offset < len(normalized); offset += callBatchSize {
		end := offset + callBatchSize
		if end > len(normalized) {
			end = len(normalized)
		}
		chunk := normalized[offset:end]

		results := make([]hexutil.Bytes, len(chunk))
		batch := make([]rpc.BatchElem, len(chunk))
		for i, addr := range chunk {
			batch[i] = rpc.BatchElem{
				Method: "eth_call",
				Args: []any{
					map[string]any{
						"to":   common.HexToAddress(addr).Hex(),
						"data": hexutil.Bytes(calldata),
					},
					"latest",
				},
				Result: &results[i],
			}
		}
		if err := r.client.BatchCallContext(ctx, batch); err != nil {
			return nil, clierr.Wrap(clierr.CodeUnavailable, "batch swap fee calls", err)
		}

		for i, addr := range chunk {
			if batch[i].Error != nil || len(results[i]) == 0 {
				fees[addr] = DefaultSwapFeeBips
				continue
			}
			decoded, err := r.pairABI.Unpack("swapFee", results[i])
			if err != nil || len(decoded) != 1 {
				fees[addr] = DefaultSwapFeeBips
				continue
			}
			fee, ok := decoded[0].(uint32)
			if !ok {
				fees[addr] = DefaultSwapFeeBips
				continue
			}
			fees[addr] = fee
		}
	}
	return fees, nil
}

// TokenMetadata reads symbol, decimals, and total supply for one token in a
// single batch.
func (r *Reader) TokenMetadata(ctx context.Context, tokenAddress string) (TokenMetadata, error) {
	tokenAddress = strings.ToLower(strings.TrimSpace(tokenAddress))
	if !common.IsHexAddress(tokenAddress) {
		return TokenMetadata{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid token address %q", tokenAddress))
	}
	to := common.HexToAddress(tokenAddress).Hex()

	methods := []string{"symbol", "decimals", "totalSupply"}
	results := make([]hexutil.Bytes, len(methods))
	batch := make([]rpc.BatchElem, len(methods))
	for i, method := range methods {
		calldata, err := r.erc20ABI.Pack(method)
		if err != nil {
			return TokenMetadata{}, clierr.Wrap(clierr.CodeInternal, "pack erc20 call", err)
		}
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []any{
				map[string]any{"to": to, "data": hexutil.Bytes(calldata)},
				"latest",
			},
			Result: &results[i],
		}
	}
	if err := r.client.BatchCallContext(ctx, batch); err != nil {
		return TokenMetadata{}, clierr.Wrap(clierr.CodeUnavailable, "batch token metadata calls", err)
	}
	for i, method := range methods {
		if batch[i].Error != nil {
			return TokenMetadata{}, clierr.Wrap(clierr.CodeUnavailable, fmt.Sprintf("read token %s", method), batch[i].Error)
		}
	}

	meta := TokenMetadata{Address: tokenAddress}
	if err := r.erc20ABI.UnpackIntoInterface(&meta.Symbol, "symbol", results[0]); err != nil {
		return TokenMetadata{}, clierr.Wrap(clierr.CodeUnavailable, "decode token symbol", err)
	}
	if err := r.erc20ABI.UnpackIntoInterface(&meta.Decimals, "decimals", results[1]); err != nil {
		return TokenMetadata{}, clierr.Wrap(clierr.CodeUnavailable, "decode token decimals", err)
	}
	supply := new(big.Int)
	if err := r.erc20ABI.UnpackIntoInterface(&supply, "totalSupply", results[2]); err != nil {
		return TokenMetadata{}, clierr.Wrap(clierr.CodeUnavailable, "decode token total supply", err)
	}
	meta.TotalSupply = supply
	return meta, nil
}
