package blocks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ggonzalez94/dexstats/internal/httpx"
	"github.com/ggonzalez94/dexstats/internal/subgraph"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, *bytes.Buffer, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	errw := &bytes.Buffer{}
	client := subgraph.New(httpx.New(2*time.Second, 0), server.URL)
	return NewResolver(client, errw), errw, server.Close
}

func requestQuery(t *testing.T, r *http.Request) string {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return req.Query
}

func TestBlocksForTimestampsBatchesAliases(t *testing.T) {
	resolver, _, closeServer := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		query := requestQuery(t, r)
		if !strings.Contains(query, "t50:") || !strings.Contains(query, "t100:") {
			t.Errorf("expected aliased sub-queries, got %s", query)
		}
		_, _ = w.Write([]byte(`{"data":{
			"t50":[{"number":"500","timestamp":"55"}],
			"t100":[{"number":"900","timestamp":"108"}]
		}}`))
	})
	defer closeServer()

	// Unordered input with a duplicate resolves to ascending unique blocks.
	out := resolver.BlocksForTimestamps(context.Background(), []int64{100, 50, 100})
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	if out[0].Number != 500 || out[0].Timestamp != 55 {
		t.Fatalf("unexpected first block: %+v", out[0])
	}
	if out[1].Number != 900 || out[1].Timestamp != 108 {
		t.Fatalf("unexpected second block: %+v", out[1])
	}
}

func TestBlocksForTimestampsOmitsUnresolved(t *testing.T) {
	resolver, _, closeServer := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{
			"t50":[{"number":"500","timestamp":"55"}],
			"t100":[]
		}}`))
	})
	defer closeServer()

	out := resolver.BlocksForTimestamps(context.Background(), []int64{50, 100})
	if len(out) != 1 {
		t.Fatalf("expected 1 block, got %d", len(out))
	}
	if out[0].Timestamp != 55 {
		t.Fatalf("unexpected block: %+v", out[0])
	}
}

func TestBlocksForTimestampsLogsFailedBatch(t *testing.T) {
	resolver, errw, closeServer := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer closeServer()

	out := resolver.BlocksForTimestamps(context.Background(), []int64{50})
	if len(out) != 0 {
		t.Fatalf("expected no blocks on failed batch, got %+v", out)
	}
	if !strings.Contains(errw.String(), "batch of 1 timestamps failed") {
		t.Fatalf("expected failure log, got %q", errw.String())
	}
}

func TestBlocksForTimestampsEmptyInput(t *testing.T) {
	resolver := NewResolver(nil, nil)
	if out := resolver.BlocksForTimestamps(context.Background(), nil); out != nil {
		t.Fatalf("expected nil for empty input, got %+v", out)
	}
}

func TestBlockAt(t *testing.T) {
	resolver, _, closeServer := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		query := requestQuery(t, r)
		if !strings.Contains(query, "timestamp_gt: 1000") || !strings.Contains(query, "timestamp_lt: 1600") {
			t.Errorf("expected bounded window in query, got %s", query)
		}
		_, _ = w.Write([]byte(`{"data":{"blocks":[{"number":"777","timestamp":"1005"}]}}`))
	})
	defer closeServer()

	block, ok := resolver.BlockAt(context.Background(), 1000)
	if !ok {
		t.Fatal("expected block resolution")
	}
	if block.Number != 777 || block.Timestamp != 1005 {
		t.Fatalf("unexpected block: %+v", block)
	}
}

func TestBlockAtNoBlockInWindow(t *testing.T) {
	resolver, _, closeServer := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"blocks":[]}}`))
	})
	defer closeServer()

	if _, ok := resolver.BlockAt(context.Background(), 1000); ok {
		t.Fatal("expected no block inside window")
	}
}
