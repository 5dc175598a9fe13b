package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrecedenceFlagsOverEnvOverFile(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output: plain\nretries: 1\nnetwork: ethereum\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DEXSTATS_OUTPUT", "json")
	t.Setenv("DEXSTATS_NETWORK", "arbitrum-one")
	flags := GlobalFlags{ConfigPath: configPath, Plain: true, Retries: 5, Network: "gnosis"}
	settings, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" {
		t.Fatalf("expected flag to win, got output=%s", settings.OutputMode)
	}
	if settings.Retries != 5 {
		t.Fatalf("expected retries from flags, got %d", settings.Retries)
	}
	if settings.Network != "gnosis" {
		t.Fatalf("expected network flag to win, got %s", settings.Network)
	}
}

func TestLoadNetworkEnvOverridesFile(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("network: ethereum\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DEXSTATS_NETWORK", "arbitrum-one")
	settings, err := Load(GlobalFlags{ConfigPath: configPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Network != "arbitrum-one" {
		t.Fatalf("expected env to beat file, got %s", settings.Network)
	}
}

func TestLoadEndpointOverrides(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	body := "networks:\n  gnosis:\n    subgraph_url: https://example.com/subgraph\n    rpc_url: https://example.com/rpc\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DEXSTATS_GNOSIS_RPC_URL", "https://env.example.com/rpc")
	settings, err := Load(GlobalFlags{ConfigPath: configPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	override := settings.Endpoints["gnosis"]
	if override.SubgraphURL != "https://example.com/subgraph" {
		t.Fatalf("expected file subgraph override, got %q", override.SubgraphURL)
	}
	if override.RPCURL != "https://env.example.com/rpc" {
		t.Fatalf("expected env rpc override, got %q", override.RPCURL)
	}
	if override.BlocksSubgraphURL != "" {
		t.Fatalf("expected no blocks override, got %q", override.BlocksSubgraphURL)
	}
}

func TestLoadMutuallyExclusiveOutputFlags(t *testing.T) {
	_, err := Load(GlobalFlags{JSON: true, Plain: true})
	if err == nil {
		t.Fatal("expected error with --json and --plain")
	}
}
