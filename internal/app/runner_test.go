package app

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestTrimRootPath(t *testing.T) {
	if got := trimRootPath("dexstats pairs chart"); got != "pairs chart" {
		t.Fatalf("unexpected trim result: %s", got)
	}
}

func TestRunnerNetworksList(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run([]string{"networks", "list", "--results-only"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	var out []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output json: %v output=%s", err, stdout.String())
	}
	if len(out) != 3 {
		t.Fatalf("expected three networks, got %d", len(out))
	}
	selected := 0
	for _, item := range out {
		if item["selected"] == true {
			selected++
		}
	}
	if selected != 1 {
		t.Fatalf("expected exactly one selected network, got %d", selected)
	}
}

func TestRunnerNetworkFlagSelectsNetwork(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run([]string{"networks", "list", "--network", "arbitrum-one", "--results-only"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	var out []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output json: %v output=%s", err, stdout.String())
	}
	for _, item := range out {
		if item["slug"] == "arbitrum-one" && item["selected"] != true {
			t.Fatalf("expected arbitrum-one selected, got %+v", out)
		}
	}
}

func TestRunnerUnknownNetworkFails(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run([]string{"networks", "list", "--network", "optimism"})
	if code != 2 {
		t.Fatalf("expected usage exit code, got %d stderr=%s", code, stderr.String())
	}
}

func TestRunnerErrorEnvelopeIgnoresResultsOnly(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run([]string{"overview", "stats", "--enable-commands", "networks list", "--results-only"})
	if code != 16 {
		t.Fatalf("expected exit 16, got %d stderr=%s", code, stderr.String())
	}
	var env map[string]any
	if err := json.Unmarshal(stderr.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse error envelope: %v output=%s", err, stderr.String())
	}
	if env["success"] != false {
		t.Fatalf("expected success=false, got %v", env["success"])
	}
}
