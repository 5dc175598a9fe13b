package subgraph

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/httpx"
)

// pageSize is the hosted-service cap for list queries.
const pageSize = 1000

// Client executes documents from the query catalog against one network's DEX
// subgraph endpoint.
type Client struct {
	http     *httpx.Client
	endpoint string
}

func New(httpClient *httpx.Client, endpoint string) *Client {
	return &Client{http: httpClient, endpoint: endpoint}
}

func (c *Client) Endpoint() string { return c.endpoint }

type graphRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphError struct {
	Message string `json:"message"`
}

type graphResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphError    `json:"errors,omitempty"`
}

// Execute posts one document and decodes the data payload into out.
// GraphQL-level errors surface as CodeUnavailable; the transport does not
// distinguish them from an unreachable indexer.
func (c *Client) Execute(ctx context.Context, query string, vars map[string]any, out any) error {
	buf, err := json.Marshal(graphRequest{Query: query, Variables: vars})
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "marshal subgraph request", err)
	}
	var resp graphResponse
	if _, err := httpx.DoBodyJSON(ctx, c.http, http.MethodPost, c.endpoint, buf, nil, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return clierr.New(clierr.CodeUnavailable, "subgraph query failed: "+strings.Join(msgs, "; "))
	}
	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 {
		return clierr.New(clierr.CodeUnavailable, "subgraph returned no data")
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return clierr.Wrap(clierr.CodeUnavailable, "decode subgraph data", err)
	}
	return nil
}

// ProtocolDayDatas returns every protocol-level day snapshot after startTime,
// merging pages client-side.
func (c *Client) ProtocolDayDatas(ctx context.Context, startTime int64) ([]ProtocolDayData, error) {
	var all []ProtocolDayData
	for skip := 0; ; skip += pageSize {
		var page struct {
			Records []ProtocolDayData `json:"swaprDayDatas"`
		}
		vars := map[string]any{"startTime": startTime, "first": pageSize, "skip": skip}
		if err := c.Execute(ctx, protocolDayDatasQuery, vars, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < pageSize {
			return all, nil
		}
	}
}

// PairDayDatas returns the pair's day snapshots after startTime.
func (c *Client) PairDayDatas(ctx context.Context, pairAddress string, startTime int64) ([]PairDayData, error) {
	var all []PairDayData
	for skip := 0; ; skip += pageSize {
		var page struct {
			Records []PairDayData `json:"pairDayDatas"`
		}
		vars := map[string]any{
			"pairAddress": strings.ToLower(pairAddress),
			"startTime":   startTime,
			"first":       pageSize,
			"skip":        skip,
		}
		if err := c.Execute(ctx, pairDayDatasQuery, vars, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < pageSize {
			return all, nil
		}
	}
}

// TokenDayDatas returns the token's day snapshots after startTime.
func (c *Client) TokenDayDatas(ctx context.Context, tokenAddress string, startTime int64) ([]TokenDayData, error) {
	var all []TokenDayData
	for skip := 0; ; skip += pageSize {
		var page struct {
			Records []TokenDayData `json:"tokenDayDatas"`
		}
		vars := map[string]any{
			"tokenAddress": strings.ToLower(tokenAddress),
			"startTime":    startTime,
			"first":        pageSize,
			"skip":         skip,
		}
		if err := c.Execute(ctx, tokenDayDatasQuery, vars, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < pageSize {
			return all, nil
		}
	}
}

// PairByAddress returns the pair's current state, or nil when unknown.
func (c *Client) PairByAddress(ctx context.Context, pairAddress string) (*Pair, error) {
	var out struct {
		Pair *Pair `json:"pair"`
	}
	vars := map[string]any{"pairAddress": strings.ToLower(pairAddress)}
	if err := c.Execute(ctx, pairQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Pair, nil
}

// PairAtBlock returns the pair's state pinned at a historical block.
func (c *Client) PairAtBlock(ctx context.Context, pairAddress string, block int64) (*Pair, error) {
	var out struct {
		Pair *Pair `json:"pair"`
	}
	vars := map[string]any{"pairAddress": strings.ToLower(pairAddress), "block": block}
	if err := c.Execute(ctx, pairAtBlockQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Pair, nil
}

// TokenByAddress returns the token's current state, or nil when unknown.
func (c *Client) TokenByAddress(ctx context.Context, tokenAddress string) (*Token, error) {
	var out struct {
		Token *Token `json:"token"`
	}
	vars := map[string]any{"tokenAddress": strings.ToLower(tokenAddress)}
	if err := c.Execute(ctx, tokenQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Token, nil
}

// TokenAtBlock returns the token's state pinned at a historical block.
func (c *Client) TokenAtBlock(ctx context.Context, tokenAddress string, block int64) (*Token, error) {
	var out struct {
		Token *Token `json:"token"`
	}
	vars := map[string]any{"tokenAddress": strings.ToLower(tokenAddress), "block": block}
	if err := c.Execute(ctx, tokenAtBlockQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Token, nil
}

// NativeCurrencyUSDPrice returns the network's native-currency price in USD
// as a decimal string.
func (c *Client) NativeCurrencyUSDPrice(ctx context.Context) (string, error) {
	var out struct {
		Bundle *Bundle `json:"bundle"`
	}
	if err := c.Execute(ctx, bundleQuery, nil, &out); err != nil {
		return "", err
	}
	if out.Bundle == nil {
		return "", clierr.New(clierr.CodeUnavailable, "subgraph bundle missing")
	}
	return out.Bundle.NativeCurrencyPrice, nil
}

// NativeCurrencyUSDPriceAtBlock returns the native-currency USD price pinned
// at a historical block.
func (c *Client) NativeCurrencyUSDPriceAtBlock(ctx context.Context, block int64) (string, error) {
	var out struct {
		Bundle *Bundle `json:"bundle"`
	}
	vars := map[string]any{"block": block}
	if err := c.Execute(ctx, bundleAtBlockQuery, vars, &out); err != nil {
		return "", err
	}
	if out.Bundle == nil {
		return "", clierr.New(clierr.CodeUnavailable, "subgraph bundle missing")
	}
	return out.Bundle.NativeCurrencyPrice, nil
}

// Campaigns returns liquidity-mining campaigns ending after lowerTimeLimit.
func (c *Client) Campaigns(ctx context.Context, lowerTimeLimit int64) ([]CampaignRecord, error) {
	var all []CampaignRecord
	for skip := 0; ; skip += pageSize {
		var page struct {
			Records []CampaignRecord `json:"liquidityMiningCampaigns"`
		}
		vars := map[string]any{"lowerTimeLimit": lowerTimeLimit, "first": pageSize, "skip": skip}
		if err := c.Execute(ctx, campaignsQuery, vars, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < pageSize {
			return all, nil
		}
	}
}

// KPITokens returns the KPI token definitions with their collateral backing.
func (c *Client) KPITokens(ctx context.Context) ([]KPITokenRecord, error) {
	var all []KPITokenRecord
	for skip := 0; ; skip += pageSize {
		var page struct {
			Records []KPITokenRecord `json:"kpiTokens"`
		}
		vars := map[string]any{"first": pageSize, "skip": skip}
		if err := c.Execute(ctx, kpiTokensQuery, vars, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if len(page.Records) < pageSize {
			return all, nil
		}
	}
}
