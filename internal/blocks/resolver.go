// Package blocks resolves unix timestamps to on-chain block numbers through
// a blocks subgraph. Historical pair/token snapshots are pinned by block
// number, so every "24h ago" style query starts here.
package blocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ggonzalez94/dexstats/internal/subgraph"
)

const (
	// batchSize bounds the aliased sub-queries packed into one request.
	batchSize = 200
	// lookaheadWindow bounds how far after a requested timestamp the
	// single-block variant will search. A timestamp with no block inside
	// the window resolves to nothing rather than scanning forward forever.
	lookaheadWindow = 600
)

// Block is a resolved timestamp→block mapping.
type Block struct {
	Number    int64
	Timestamp int64
}

// Resolver batches block-at-timestamp lookups against a blocks subgraph.
type Resolver struct {
	graph *subgraph.Client
	errw  io.Writer
}

// NewResolver wires a resolver to a blocks-subgraph client. Query failures
// are reported to errw and degrade to partial results; analytics callers must
// already tolerate fewer blocks than timestamps requested.
func NewResolver(graph *subgraph.Client, errw io.Writer) *Resolver {
	if errw == nil {
		errw = io.Discard
	}
	return &Resolver{graph: graph, errw: errw}
}

type blockRecord struct {
	Number    string `json:"number"`
	Timestamp string `json:"timestamp"`
}

// BlocksForTimestamps resolves, for each requested timestamp, the earliest
// block at or after it. Input order and duplicates do not matter; the result
// is ascending by timestamp. Timestamps with no qualifying block (typically
// in the future) are omitted. A failed batch is logged and skipped so one bad
// page cannot sink the whole lookup.
func (r *Resolver) BlocksForTimestamps(ctx context.Context, timestamps []int64) []Block {
	unique := dedupeSorted(timestamps)
	if len(unique) == 0 {
		return nil
	}

	var out []Block
	for offset := 0; offset < len(unique); offset += batchSize {
		end := offset + batchSize
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[offset:end]

		resolved, err := r.resolveBatch(ctx, batch)
		if err != nil {
			fmt.Fprintf(r.errw, "blocks: batch of %d timestamps failed: %v\n", len(batch), err)
			continue
		}
		out = append(out, resolved...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// BlockAt resolves the first block within the fixed lookahead window after
// ts. ok is false when no block lands inside the window.
func (r *Resolver) BlockAt(ctx context.Context, ts int64) (Block, bool) {
	query := fmt.Sprintf(`query blockAt {
  blocks(first: 1, orderBy: timestamp, orderDirection: asc, where: { timestamp_gt: %d, timestamp_lt: %d }) {
    number
    timestamp
  }
}`, ts, ts+lookaheadWindow)

	var resp struct {
		Blocks []blockRecord `json:"blocks"`
	}
	if err := r.graph.Execute(ctx, query, nil, &resp); err != nil {
		fmt.Fprintf(r.errw, "blocks: lookup at %d failed: %v\n", ts, err)
		return Block{}, false
	}
	if len(resp.Blocks) == 0 {
		return Block{}, false
	}
	block, err := parseBlock(resp.Blocks[0])
	if err != nil {
		fmt.Fprintf(r.errw, "blocks: malformed block for %d: %v\n", ts, err)
		return Block{}, false
	}
	return block, true
}

// resolveBatch packs one aliased sub-query per timestamp into a single
// request, then re-associates results by alias so concurrent indexer-side
// evaluation order cannot reorder the output.
func (r *Resolver) resolveBatch(ctx context.Context, timestamps []int64) ([]Block, error) {
	var b strings.Builder
	b.WriteString("query blocks {\n")
	for _, ts := range timestamps {
		fmt.Fprintf(&b, "  t%d: blocks(first: 1, orderBy: timestamp, orderDirection: asc, where: { timestamp_gt: %d }) { number timestamp }\n", ts, ts)
	}
	b.WriteString("}")

	var raw map[string]json.RawMessage
	if err := r.graph.Execute(ctx, b.String(), nil, &raw); err != nil {
		return nil, err
	}

	out := make([]Block, 0, len(timestamps))
	for _, ts := range timestamps {
		payload, ok := raw[fmt.Sprintf("t%d", ts)]
		if !ok {
			continue
		}
		var records []blockRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			fmt.Fprintf(r.errw, "blocks: malformed entry for %d: %v\n", ts, err)
			continue
		}
		if len(records) == 0 {
			continue
		}
		block, err := parseBlock(records[0])
		if err != nil {
			fmt.Fprintf(r.errw, "blocks: malformed block for %d: %v\n", ts, err)
			continue
		}
		out = append(out, block)
	}
	return out, nil
}

func parseBlock(rec blockRecord) (Block, error) {
	number, err := strconv.ParseInt(rec.Number, 10, 64)
	if err != nil {
		return Block{}, fmt.Errorf("block number %q: %w", rec.Number, err)
	}
	ts, err := strconv.ParseInt(rec.Timestamp, 10, 64)
	if err != nil {
		return Block{}, fmt.Errorf("block timestamp %q: %w", rec.Timestamp, err)
	}
	return Block{Number: number, Timestamp: ts}, nil
}

func dedupeSorted(timestamps []int64) []int64 {
	if len(timestamps) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(timestamps))
	out := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		if _, ok := seen[ts]; ok {
			continue
		}
		seen[ts] = struct{}{}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
